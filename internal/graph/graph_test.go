package graph

import (
	"testing"

	"github.com/codeprism/codeprism/internal/classifier"
	"github.com/codeprism/codeprism/internal/parser"
)

func TestBuildModelAssociationAndControllerModel(t *testing.T) {
	patient := parser.ParsedFile{
		Path: "app/models/patient.rb", Repo: "r1",
		Classes: []parser.Class{{Name: "Patient", Type: parser.ClassModel}},
	}
	device := parser.ParsedFile{
		Path: "app/models/device.rb", Repo: "r1",
		Classes: []parser.Class{{Name: "Device", Type: parser.ClassModel}},
	}
	patient.Associations = []parser.Association{{Type: parser.AssocHasMany, Name: "devices", TargetModel: "Device"}}

	controller := parser.ParsedFile{
		Path: "app/controllers/patients_controller.rb", Repo: "r1",
		Classes: []parser.Class{{Name: "PatientsController", Type: parser.ClassController}},
		Imports: []string{"patient"},
	}

	inputs := []Input{
		{File: patient, Role: classifier.RoleDomain},
		{File: device, Role: classifier.RoleDomain},
		{File: controller, Role: classifier.RoleDomain},
	}

	edges := Build(inputs)

	var foundAssoc, foundControllerModel, foundSelfEdge bool
	for _, e := range edges {
		if e.Relation == RelationControllerModel && e.SourceFile == controller.Path && e.TargetFile == patient.Path {
			foundControllerModel = true
		}
		if e.Relation == RelationModelAssociation && e.SourceFile == patient.Path && e.TargetFile == device.Path {
			foundAssoc = true
			if e.Weight != 3 {
				t.Errorf("expected weight 3 for model_association, got %v", e.Weight)
			}
		}
		if e.SourceFile == e.TargetFile {
			foundSelfEdge = true
		}
	}
	if !foundAssoc {
		t.Error("expected a model_association edge from patient to device")
	}
	if !foundControllerModel {
		t.Error("expected a controller_model edge from the controller to patient")
	}
	if foundSelfEdge {
		t.Error("no self-edges allowed")
	}
}

func TestBuildDropsNonEmittingRoles(t *testing.T) {
	a := parser.ParsedFile{Path: "a.go", Repo: "r1", Imports: []string{"./b"}}
	b := parser.ParsedFile{Path: "b.go", Repo: "r1"}

	inputs := []Input{
		{File: a, Role: classifier.RoleTest},
		{File: b, Role: classifier.RoleDomain},
	}
	edges := Build(inputs)
	if len(edges) != 0 {
		t.Errorf("expected no edges when source role is test, got %d", len(edges))
	}
}

func TestBuildSharedUtilityHalvesWeight(t *testing.T) {
	a := parser.ParsedFile{Path: "lib/shared/a.go", Repo: "r1", Imports: []string{"./b"}}
	b := parser.ParsedFile{Path: "lib/shared/b.go", Repo: "r1"}

	inputs := []Input{
		{File: a, Role: classifier.RoleSharedUtility},
		{File: b, Role: classifier.RoleSharedUtility},
	}
	edges := Build(inputs)
	if len(edges) != 1 {
		t.Fatalf("expected one edge, got %d", len(edges))
	}
	if edges[0].Weight != 0.5 {
		t.Errorf("expected halved weight 0.5, got %v", edges[0].Weight)
	}
}

func TestBuildDeduplicatesAndSortsDeterministically(t *testing.T) {
	a := parser.ParsedFile{Path: "a.go", Repo: "r1", Imports: []string{"./b", "./b"}}
	b := parser.ParsedFile{Path: "b.go", Repo: "r1"}

	inputs := []Input{
		{File: a, Role: classifier.RoleDomain},
		{File: b, Role: classifier.RoleDomain},
	}
	edges := Build(inputs)
	if len(edges) != 1 {
		t.Fatalf("expected deduplication to one edge, got %d", len(edges))
	}
}
