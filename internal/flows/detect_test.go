package flows

import (
	"testing"

	"github.com/codeprism/codeprism/internal/graph"
)

func TestDetectFlowNaming(t *testing.T) {
	patient := "/app/models/patient.rb"
	controller := "/app/controllers/patients_controller.rb"
	device := "/app/models/device.rb"

	files := map[string]FileInfo{
		patient:    {Repo: "r1", ModelNames: []string{"Patient"}},
		controller: {Repo: "r1"},
		device:     {Repo: "r1", ModelNames: []string{"Device"}},
	}

	edges := []graph.Edge{
		{SourceFile: controller, TargetFile: patient, Relation: graph.RelationControllerModel, Weight: 3},
		{SourceFile: patient, TargetFile: device, Relation: graph.RelationModelAssociation, Weight: 2},
		{SourceFile: controller, TargetFile: device, Relation: graph.RelationControllerModel, Weight: 2},
	}

	flows := Detect(files, edges)
	if len(flows) != 1 {
		t.Fatalf("expected one community flow, got %d: %+v", len(flows), flows)
	}
	f := flows[0]
	if f.Name != "patient" {
		t.Errorf("expected flow name 'patient', got %q", f.Name)
	}
	if len(f.Files) != 3 {
		t.Errorf("expected all three files in the flow, got %v", f.Files)
	}
	if f.IsHub {
		t.Error("expected is_hub=false")
	}
}

func TestDetectHub(t *testing.T) {
	hub := "/app/models/user.rb"
	files := map[string]FileInfo{hub: {Repo: "r1", ModelNames: []string{"User"}}}

	var edges []graph.Edge
	for i := 0; i < 9; i++ {
		src := string(rune('a'+i)) + "_file.rb"
		files[src] = FileInfo{Repo: "r1"}
		edges = append(edges, graph.Edge{
			SourceFile: src, TargetFile: hub,
			Relation: graph.RelationModelAssociation, Weight: 3,
		})
	}

	flows := Detect(files, edges)

	var hubFlow *Flow
	for i := range flows {
		if flows[i].IsHub {
			hubFlow = &flows[i]
		}
	}
	if hubFlow == nil {
		t.Fatal("expected a hub flow")
	}
	if len(hubFlow.Files) != 1 || hubFlow.Files[0] != hub {
		t.Errorf("expected hub flow to contain only %q, got %v", hub, hubFlow.Files)
	}
}

func TestDetectEmptyGraph(t *testing.T) {
	if flows := Detect(nil, nil); flows != nil {
		t.Errorf("expected nil flows for empty input, got %v", flows)
	}
}

func TestDetectDisjointFilesUniqueNames(t *testing.T) {
	files := map[string]FileInfo{
		"/app/models/patient.rb":               {Repo: "r1", ModelNames: []string{"Patient"}},
		"/app/controllers/patients_controller.rb": {Repo: "r1"},
		"/app/models/device.rb":                {Repo: "r1", ModelNames: []string{"Device"}},
		"/app/models/device2.rb":               {Repo: "r2", ModelNames: []string{"Device"}},
		"/app/controllers/devices2_controller.rb": {Repo: "r2"},
		"/app/models/widget2.rb":               {Repo: "r2", ModelNames: []string{"Widget"}},
	}
	edges := []graph.Edge{
		{SourceFile: "/app/controllers/patients_controller.rb", TargetFile: "/app/models/patient.rb", Relation: graph.RelationControllerModel, Weight: 3},
		{SourceFile: "/app/models/patient.rb", TargetFile: "/app/models/device.rb", Relation: graph.RelationModelAssociation, Weight: 2},
		{SourceFile: "/app/controllers/patients_controller.rb", TargetFile: "/app/models/device.rb", Relation: graph.RelationControllerModel, Weight: 2},

		{SourceFile: "/app/controllers/devices2_controller.rb", TargetFile: "/app/models/device2.rb", Relation: graph.RelationControllerModel, Weight: 3},
		{SourceFile: "/app/models/device2.rb", TargetFile: "/app/models/widget2.rb", Relation: graph.RelationModelAssociation, Weight: 2},
		{SourceFile: "/app/controllers/devices2_controller.rb", TargetFile: "/app/models/widget2.rb", Relation: graph.RelationControllerModel, Weight: 2},
	}

	flows := Detect(files, edges)
	if len(flows) != 2 {
		t.Fatalf("expected two disjoint community flows, got %d: %+v", len(flows), flows)
	}

	seenFiles := make(map[string]bool)
	seenNames := make(map[string]bool)
	for _, f := range flows {
		if seenNames[f.Name] {
			t.Errorf("flow name %q is not unique", f.Name)
		}
		seenNames[f.Name] = true
		for _, file := range f.Files {
			if seenFiles[file] {
				t.Errorf("file %q appears in more than one flow", file)
			}
			seenFiles[file] = true
		}
	}
}
