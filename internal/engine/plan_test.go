package engine

import (
	"testing"

	"opcmirror/internal/opc"
	"opcmirror/internal/tagstore"
)

func discovered(folderPath []string, name, ref string) DiscoveredTag {
	return DiscoveredTag{FolderPath: folderPath, Name: name, Ref: opc.NodeRef("ns=2;s=" + ref), DataType: "Float8"}
}

func folderPaths(plan *CreationPlan) []string {
	out := make([]string, len(plan.Folders))
	for i, f := range plan.Folders {
		out[i] = JoinPath(f.Path)
	}
	return out
}

func TestBuildPlanFolderChainParentsFirst(t *testing.T) {
	tags := []DiscoveredTag{
		discovered([]string{"AI-1", "PV"}, "CV", "ai1.pv.cv"),
		discovered([]string{"AI-2", "PV"}, "CV", "ai2.pv.cv"),
	}
	plan := BuildPlan(tags, "BRX001", tagstore.NewSnapshot())

	want := []string{
		"BRX001",
		"BRX001/AI-1",
		"BRX001/AI-1/PV",
		"BRX001/AI-2",
		"BRX001/AI-2/PV",
	}
	got := folderPaths(plan)
	if len(got) != len(want) {
		t.Fatalf("folders = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("folders[%d] = %s, want %s (full: %v)", i, got[i], want[i], got)
		}
	}
	if len(plan.Tags) != 2 {
		t.Fatalf("planned tags = %d, want 2", len(plan.Tags))
	}
}

func TestBuildPlanNestedRootChain(t *testing.T) {
	tags := []DiscoveredTag{discovered([]string{"PV"}, "CV", "cv")}
	plan := BuildPlan(tags, "DELTAV/BIOREACTOR/BRX001", tagstore.NewSnapshot())

	got := folderPaths(plan)
	want := []string{
		"DELTAV",
		"DELTAV/BIOREACTOR",
		"DELTAV/BIOREACTOR/BRX001",
		"DELTAV/BIOREACTOR/BRX001/PV",
	}
	if len(got) != len(want) {
		t.Fatalf("folders = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("folders[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBuildPlanSkipsExistingFolders(t *testing.T) {
	snap := tagstore.NewSnapshot()
	snap.Folders["BRX001"] = struct{}{}
	snap.Folders["BRX001/AI-1"] = struct{}{}

	tags := []DiscoveredTag{discovered([]string{"AI-1", "PV"}, "CV", "cv")}
	plan := BuildPlan(tags, "BRX001", snap)

	got := folderPaths(plan)
	if len(got) != 1 || got[0] != "BRX001/AI-1/PV" {
		t.Fatalf("folders = %v, want [BRX001/AI-1/PV]", got)
	}
}

func TestBuildPlanSkipsExistingTags(t *testing.T) {
	snap := tagstore.NewSnapshot()
	snap.Tags["BRX001/AI-1/PV/CV"] = struct{}{}

	tags := []DiscoveredTag{
		discovered([]string{"AI-1", "PV"}, "CV", "ai1.pv.cv"),
		discovered([]string{"AI-2", "PV"}, "CV", "ai2.pv.cv"),
	}
	plan := BuildPlan(tags, "BRX001", snap)

	if len(plan.Tags) != 1 {
		t.Fatalf("planned tags = %d, want 1", len(plan.Tags))
	}
	if plan.Tags[0].TargetPath(plan.Root) != "BRX001/AI-2/PV/CV" {
		t.Errorf("planned tag = %s, want BRX001/AI-2/PV/CV", plan.Tags[0].TargetPath(plan.Root))
	}
	if len(plan.SkippedTags) != 1 {
		t.Fatalf("skipped tags = %d, want 1", len(plan.SkippedTags))
	}
}

func TestBuildPlanDeduplicatesByTargetPath(t *testing.T) {
	tags := []DiscoveredTag{
		discovered([]string{"AI-1", "PV"}, "CV", "a"),
		discovered([]string{"AI-1", "PV"}, "CV", "b"),
	}
	plan := BuildPlan(tags, "BRX001", tagstore.NewSnapshot())

	if len(plan.Tags) != 1 {
		t.Fatalf("planned tags = %d, want 1", len(plan.Tags))
	}
	got := folderPaths(plan)
	if len(got) != 3 {
		t.Fatalf("folders = %v, want 3 entries", got)
	}
}

func TestBuildPlanEmptyDiscovery(t *testing.T) {
	plan := BuildPlan(nil, "BRX001", tagstore.NewSnapshot())
	// The root chain is still required so the run leaves a landing folder.
	got := folderPaths(plan)
	if len(got) != 1 || got[0] != "BRX001" {
		t.Fatalf("folders = %v, want [BRX001]", got)
	}
	if len(plan.Tags) != 0 {
		t.Fatalf("planned tags = %d, want 0", len(plan.Tags))
	}
}
