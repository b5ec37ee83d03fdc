/*
Package dsl provides a fluent builder for constructing cacheflow workflows in Go.

It is an alternative to workflow documents for tests, fixtures and
programmatically generated canvases.

Example usage:

	w, err := dsl.New().
		Add("step1").Component("data").At(20, 50).
		Outputs("data").
		Param("function", "fast").
		Step("step2").Component("optimize").At(400, 50).
		Link("data", "step1", "data").
		Build()
*/
package dsl
