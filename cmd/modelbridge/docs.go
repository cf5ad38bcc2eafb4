package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           modelbridge API
// @version         1.0
// @description     Load serialized models, run them on tensors and release them by handle.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
