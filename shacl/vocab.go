package shacl

import "github.com/geoknoesis/shacl-go/rdf"

// Namespace is the SHACL vocabulary namespace.
const Namespace = "http://www.w3.org/ns/shacl#"

func sh(local string) rdf.IRI { return rdf.IRI{Value: Namespace + local} }

// Shape and target vocabulary.
var (
	NodeShape        = sh("NodeShape")
	PropertyShape    = sh("PropertyShape")
	TargetNode       = sh("targetNode")
	TargetClass      = sh("targetClass")
	TargetSubjectsOf = sh("targetSubjectsOf")
	TargetObjectsOf  = sh("targetObjectsOf")
	Deactivated      = sh("deactivated")
	Severity         = sh("severity")
	Message          = sh("message")
	PathPredicate    = sh("path")
	AlternativePath  = sh("alternativePath")
	InversePath      = sh("inversePath")
	ZeroOrMorePath   = sh("zeroOrMorePath")
	OneOrMorePath    = sh("oneOrMorePath")
	ZeroOrOnePath    = sh("zeroOrOnePath")
	Violation        = sh("Violation")
	Warning          = sh("Warning")
	Info             = sh("Info")
	IRIKind          = sh("IRI")
	BlankNodeKind    = sh("BlankNode")
	LiteralKind      = sh("Literal")
	BlankNodeOrIRI   = sh("BlankNodeOrIRI")
	BlankNodeOrLit   = sh("BlankNodeOrLiteral")
	IRIOrLiteral     = sh("IRIOrLiteral")
)

// Constraint parameters.
var (
	ClassParam               = sh("class")
	DatatypeParam            = sh("datatype")
	NodeKindParam            = sh("nodeKind")
	MinCountParam            = sh("minCount")
	MaxCountParam            = sh("maxCount")
	MinExclusiveParam        = sh("minExclusive")
	MinInclusiveParam        = sh("minInclusive")
	MaxExclusiveParam        = sh("maxExclusive")
	MaxInclusiveParam        = sh("maxInclusive")
	MinLengthParam           = sh("minLength")
	MaxLengthParam           = sh("maxLength")
	PatternParam             = sh("pattern")
	FlagsParam               = sh("flags")
	LanguageInParam          = sh("languageIn")
	UniqueLangParam          = sh("uniqueLang")
	EqualsParam              = sh("equals")
	DisjointParam            = sh("disjoint")
	LessThanParam            = sh("lessThan")
	LessThanOrEqualsParam    = sh("lessThanOrEquals")
	NotParam                 = sh("not")
	AndParam                 = sh("and")
	OrParam                  = sh("or")
	XoneParam                = sh("xone")
	NodeParam                = sh("node")
	PropertyParam            = sh("property")
	QualifiedValueShapeParam = sh("qualifiedValueShape")
	QualifiedMinCountParam   = sh("qualifiedMinCount")
	QualifiedMaxCountParam   = sh("qualifiedMaxCount")
	QualifiedDisjointParam   = sh("qualifiedValueShapesDisjoint")
	ClosedParam              = sh("closed")
	IgnoredPropertiesParam   = sh("ignoredProperties")
	HasValueParam            = sh("hasValue")
	InParam                  = sh("in")
)

// Report vocabulary.
var (
	ValidationReport          = sh("ValidationReport")
	ValidationResult          = sh("ValidationResult")
	Conforms                  = sh("conforms")
	ResultProperty            = sh("result")
	FocusNode                 = sh("focusNode")
	ResultPath                = sh("resultPath")
	Value                     = sh("value")
	SourceShape               = sh("sourceShape")
	SourceConstraintComponent = sh("sourceConstraintComponent")
	ResultSeverity            = sh("resultSeverity")
	ResultMessage             = sh("resultMessage")
)

// Constraint components, as reported in sh:sourceConstraintComponent.
var (
	ClassComponent             = sh("ClassConstraintComponent")
	DatatypeComponent          = sh("DatatypeConstraintComponent")
	NodeKindComponent          = sh("NodeKindConstraintComponent")
	MinCountComponent          = sh("MinCountConstraintComponent")
	MaxCountComponent          = sh("MaxCountConstraintComponent")
	MinExclusiveComponent      = sh("MinExclusiveConstraintComponent")
	MinInclusiveComponent      = sh("MinInclusiveConstraintComponent")
	MaxExclusiveComponent      = sh("MaxExclusiveConstraintComponent")
	MaxInclusiveComponent      = sh("MaxInclusiveConstraintComponent")
	MinLengthComponent         = sh("MinLengthConstraintComponent")
	MaxLengthComponent         = sh("MaxLengthConstraintComponent")
	PatternComponent           = sh("PatternConstraintComponent")
	LanguageInComponent        = sh("LanguageInConstraintComponent")
	UniqueLangComponent        = sh("UniqueLangConstraintComponent")
	EqualsComponent            = sh("EqualsConstraintComponent")
	DisjointComponent          = sh("DisjointConstraintComponent")
	LessThanComponent          = sh("LessThanConstraintComponent")
	LessThanOrEqualsComponent  = sh("LessThanOrEqualsConstraintComponent")
	NotComponent               = sh("NotConstraintComponent")
	AndComponent               = sh("AndConstraintComponent")
	OrComponent                = sh("OrConstraintComponent")
	XoneComponent              = sh("XoneConstraintComponent")
	NodeComponent              = sh("NodeConstraintComponent")
	PropertyComponent          = sh("PropertyConstraintComponent")
	QualifiedMinCountComponent = sh("QualifiedMinCountConstraintComponent")
	QualifiedMaxCountComponent = sh("QualifiedMaxCountConstraintComponent")
	ClosedComponent            = sh("ClosedConstraintComponent")
	HasValueComponent          = sh("HasValueConstraintComponent")
	InComponent                = sh("InConstraintComponent")
)
