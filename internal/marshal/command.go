package marshal

import "modelbridge/pkg/types"

// Method names recognized by the bridge.
const (
	MethodLoad    = "load"
	MethodForward = "forward"
	MethodDestroy = "destroy"
)

// Command is one of LoadCommand, ForwardCommand or DestroyCommand.
type Command interface {
	Method() string
	command()
}

// LoadCommand asks the engine to load the model stored at FilePath.
type LoadCommand struct {
	FilePath string
}

// ForwardCommand runs inference on a loaded module.
type ForwardCommand struct {
	Handle types.Handle
	Inputs []types.Tensor
	// OutputFormat is OutputDescriptors or OutputTyped.
	OutputFormat string
}

// DestroyCommand releases a loaded module.
type DestroyCommand struct {
	Handle types.Handle
}

func (LoadCommand) Method() string    { return MethodLoad }
func (ForwardCommand) Method() string { return MethodForward }
func (DestroyCommand) Method() string { return MethodDestroy }

func (LoadCommand) command()    {}
func (ForwardCommand) command() {}
func (DestroyCommand) command() {}
