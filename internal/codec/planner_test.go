package codec

import "testing"

func TestCoalesceReadsMergesSmallGaps(t *testing.T) {
	units := []Unit{
		{Range: ByteRange{Offset: 0, Length: 100}, Tag: 0},
		{Range: ByteRange{Offset: 150, Length: 100}, Tag: 1}, // 50-byte gap, merge threshold 64
	}
	planned := CoalesceReads(units, 64, 1<<20)
	if len(planned) != 1 {
		t.Fatalf("got %d planned reads, want 1 (gap under merge threshold)", len(planned))
	}
	if planned[0].Range.Offset != 0 || planned[0].Range.Length != 250 {
		t.Fatalf("planned range = %+v, want [0,250)", planned[0].Range)
	}
	if len(planned[0].Tags) != 2 {
		t.Fatalf("planned tags = %v, want 2 entries", planned[0].Tags)
	}
}

func TestCoalesceReadsDoesNotMergeAcrossLargeGaps(t *testing.T) {
	units := []Unit{
		{Range: ByteRange{Offset: 0, Length: 100}, Tag: 0},
		{Range: ByteRange{Offset: 1000, Length: 100}, Tag: 1},
	}
	planned := CoalesceReads(units, 64, 1<<20)
	if len(planned) != 2 {
		t.Fatalf("got %d planned reads, want 2 (gap over merge threshold)", len(planned))
	}
}

func TestCoalesceReadsSplitsOversizedMerge(t *testing.T) {
	units := []Unit{
		{Range: ByteRange{Offset: 0, Length: 50}, Tag: 0},
		{Range: ByteRange{Offset: 50, Length: 50}, Tag: 1},
		{Range: ByteRange{Offset: 100, Length: 50}, Tag: 2},
	}
	// Every unit is adjacent (no gap), but the max span is capped at 80,
	// so the merged run of three units must be split back apart.
	planned := CoalesceReads(units, 64, 80)
	if len(planned) < 2 {
		t.Fatalf("got %d planned reads, want at least 2 (max span exceeded)", len(planned))
	}
	for _, pr := range planned {
		if pr.Range.Length > 80 {
			t.Fatalf("planned range length %d exceeds ioSizeMax 80", pr.Range.Length)
		}
	}
	// Every tag must still appear exactly once, in order.
	var tags []uint64
	for _, pr := range planned {
		tags = append(tags, pr.Tags...)
	}
	if len(tags) != 3 {
		t.Fatalf("got %d tags across planned reads, want 3", len(tags))
	}
	for i, tag := range tags {
		if tag != uint64(i) {
			t.Fatalf("tags[%d] = %d, want %d (planner must preserve ascending order)", i, tag, i)
		}
	}
}

func TestCoalesceReadsEmptyInput(t *testing.T) {
	if got := CoalesceReads(nil, 64, 1<<20); got != nil {
		t.Fatalf("CoalesceReads(nil) = %v, want nil", got)
	}
}

func TestCoalesceReadsIsMinimalUnderWideThresholds(t *testing.T) {
	// With thresholds wide enough to cover the whole span, every unit
	// must collapse into exactly one planned read.
	units := []Unit{
		{Range: ByteRange{Offset: 0, Length: 10}, Tag: 0},
		{Range: ByteRange{Offset: 20, Length: 10}, Tag: 1},
		{Range: ByteRange{Offset: 40, Length: 10}, Tag: 2},
	}
	planned := CoalesceReads(units, 1<<20, 1<<20)
	if len(planned) != 1 {
		t.Fatalf("got %d planned reads, want 1", len(planned))
	}
}

func TestPlanDataReadsUsesBracketingLUTEntries(t *testing.T) {
	offsets := map[uint64]uint64{0: 1000, 1: 1100, 2: 1250, 3: 1400}
	spans := []ChunkSpan{{Lo: 0, Hi: 2}}
	planned := PlanDataReads(spans, func(k uint64) uint64 { return offsets[k] }, 64, 1<<20)
	if len(planned) != 1 {
		t.Fatalf("got %d planned reads, want 1", len(planned))
	}
	if planned[0].Range.Offset != 1000 || planned[0].Range.Length != 400 {
		t.Fatalf("planned range = %+v, want [1000,1400)", planned[0].Range)
	}
}

func TestGroupRange(t *testing.T) {
	first, last := GroupRange(0, LUTGroupSize+5)
	if first != 0 || last != 1 {
		t.Fatalf("GroupRange(0, %d) = (%d,%d), want (0,1)", LUTGroupSize+5, first, last)
	}
}
