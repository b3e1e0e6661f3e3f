// Package shacl implements SHACL Core validation over rdf graphs.
//
// A shapes graph is compiled once with Engine.CompileShapes into an
// immutable Shapes value, which can then validate any number of data graphs
// concurrently:
//
//	engine := shacl.NewEngine()
//	shapes, err := engine.CompileShapes(shapesGraph)
//	if err != nil {
//	    // *shacl.ShapeError
//	}
//	report, err := engine.Validate(ctx, shapes, dataGraph)
//	if err != nil {
//	    // context cancelled
//	}
//	fmt.Println(report.Conforms)
//
// SHACL-SPARQL and SHACL-JS constraints are not supported.
package shacl
