// Package parser maps file extensions to language parsers and assembles
// their output into a ParsedFile, the unit consumed by the graph builder
// and card generator.
package parser

// ClassType enumerates the recognized structural roles a parsed class or
// module-level type can play.
type ClassType string

const (
	ClassModel      ClassType = "model"
	ClassController ClassType = "controller"
	ClassService    ClassType = "service"
	ClassJob        ClassType = "job"
	ClassConcern    ClassType = "concern"
	ClassHelper     ClassType = "helper"
	ClassSerializer ClassType = "serializer"
	ClassMiddleware ClassType = "middleware"
	ClassComponent  ClassType = "component"
	ClassOther      ClassType = "other"
)

// AssociationType enumerates ORM relationship kinds recognized across
// Rails/ActiveRecord and Django's ORM.
type AssociationType string

const (
	AssocHasMany         AssociationType = "has_many"
	AssocBelongsTo       AssociationType = "belongs_to"
	AssocHasOne          AssociationType = "has_one"
	AssocHABTM           AssociationType = "hmatbm"
	AssocForeignKey      AssociationType = "ForeignKey"
	AssocManyToManyField AssociationType = "ManyToManyField"
	AssocOneToOneField   AssociationType = "OneToOneField"
)

// Class is a parsed class/struct/component-level declaration.
type Class struct {
	Name   string
	Type   ClassType
	Parent string
}

// Function is a parsed top-level or method-level function declaration.
type Function struct {
	Name      string
	Receiver  string // non-empty for methods (class/struct name)
	StartLine int
	EndLine   int
}

// Association is a parsed ORM relationship declaration.
type Association struct {
	Type         AssociationType
	Name         string
	TargetModel  string
	Options      map[string]string
}

// Route is a parsed HTTP route declaration (from a router/framework file).
type Route struct {
	Method     string
	Path       string
	Controller string
	Action     string
}

// APICall is a parsed outbound HTTP call site (frontend → backend).
type APICall struct {
	Method string
	Path   string
}

// ParsedFile is the product of C1 for one file: a language parser's raw
// output, refined by zero or more framework extractors.
type ParsedFile struct {
	Path         string // workspace-relative, never absolute
	Repo         string
	Language     string
	FileRole     string // populated by the classifier in C2, not C1
	Imports      []string
	Exports      []string
	Classes      []Class
	Functions    []Function
	Associations []Association
	Routes       []Route
	APICalls     []APICall
	Validations  []string
	Callbacks    []string
	ContentHash  string
	IsEntryPoint bool // set by the orchestrator when C2 classifies the file as entry_point
}

// PartialParsedFile is what a single LanguageParser.Parse call returns:
// the grammar- or regex-derived facts before any framework extractor pass
// or classifier role assignment.
type PartialParsedFile struct {
	Imports      []string
	Exports      []string
	Classes      []Class
	Functions    []Function
	Associations []Association
	Routes       []Route
	APICalls     []APICall
	Validations  []string
	Callbacks    []string
}

// Merge folds another partial parse (e.g. a Vue <script> block, or a
// framework extractor's additional findings) into this one.
func (p *PartialParsedFile) Merge(other PartialParsedFile) {
	p.Imports = append(p.Imports, other.Imports...)
	p.Exports = append(p.Exports, other.Exports...)
	p.Classes = append(p.Classes, other.Classes...)
	p.Functions = append(p.Functions, other.Functions...)
	p.Associations = append(p.Associations, other.Associations...)
	p.Routes = append(p.Routes, other.Routes...)
	p.APICalls = append(p.APICalls, other.APICalls...)
	p.Validations = append(p.Validations, other.Validations...)
	p.Callbacks = append(p.Callbacks, other.Callbacks...)
}
