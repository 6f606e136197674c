package main

// General API documentation for swaggo. The generated document lives in
// internal/apidocs and is served when built with -tags=swagger.
//
// @title           lmsbridge API
// @version         1.0
// @description     HTTP facade over LM Studio model management with CLI fallback.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
