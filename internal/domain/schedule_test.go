package domain

import (
	"reflect"
	"testing"
)

func mustValid(t *testing.T, in PlannerInput) {
	t.Helper()
	if err := in.Validate(DefaultLimits()); err != nil {
		t.Fatalf("input should be valid: %v", err)
	}
}

func eventByID(events []ScheduleEvent, id string) *ScheduleEvent {
	for i := range events {
		if events[i].ID == id {
			return &events[i]
		}
	}
	return nil
}

func TestBuildSplit_ReferenceEvening(t *testing.T) {
	// 19:00 arrival, dinner, no laundry, 45 min study:
	// dinner 19:00–20:00, bath 20:00–21:00, study 21:00–21:45, free 75 min.
	in := PlannerInput{ArrivalHour: 19, ArrivalMinute: 0, HasDinner: true, StudyMinutes: 45}
	mustValid(t, in)
	events := BuildSchedule(in, PolicySplit)

	dinner := eventByID(events, "dinner")
	if dinner == nil || dinner.StartMinute != 19*60 || dinner.DurationMinute != 60 {
		t.Fatalf("unexpected dinner: %+v", dinner)
	}
	bath := eventByID(events, "bath")
	if bath == nil || bath.StartMinute != 20*60 {
		t.Fatalf("unexpected bath: %+v", bath)
	}
	study := eventByID(events, "study2")
	if study == nil || study.StartMinute != 21*60 || study.DurationMinute != 45 {
		t.Fatalf("unexpected study: %+v", study)
	}
	if study.Label != LabelStudy {
		t.Fatalf("single session should use the plain label, got %q", study.Label)
	}
	free := eventByID(events, "free2")
	if free == nil || free.DurationMinute != 75 {
		t.Fatalf("unexpected trailing free: %+v", free)
	}
	if got := TotalFreeTime(events); got != 75 {
		t.Fatalf("want 75 free minutes, got %d", got)
	}
	if Overtime(events) {
		t.Fatal("reference evening is not overtime")
	}
}

func TestBuildSplit_EarlyArrivalSplitsStudy(t *testing.T) {
	// 17:00 arrival leaves a 90 min window before dinner. With 60 min of
	// study the after-bath window (120 min) absorbs all of it.
	in := PlannerInput{ArrivalHour: 17, ArrivalMinute: 0, HasDinner: true, StudyMinutes: 60}
	events := BuildSchedule(in, PolicySplit)

	if eventByID(events, "study1") != nil {
		t.Fatal("study should fit entirely after the bath")
	}
	study := eventByID(events, "study2")
	if study == nil || study.DurationMinute != 60 {
		t.Fatalf("unexpected study: %+v", study)
	}
	before := eventByID(events, "free1")
	if before == nil || before.DurationMinute != 90 {
		t.Fatalf("unexpected pre-dinner free: %+v", before)
	}
}

func TestBuildSplit_TwoSessionsLabeled(t *testing.T) {
	// A study request larger than the 120 min after-bath window spills into
	// the window before dinner; both sessions then carry ordinal labels.
	// (Unreachable through the bounded UI range, but the builder must cope.)
	in := PlannerInput{ArrivalHour: 17, ArrivalMinute: 0, HasDinner: true, HasLaundry: true, StudyMinutes: 150}
	events := BuildSchedule(in, PolicySplit)

	s1 := eventByID(events, "study1")
	s2 := eventByID(events, "study2")
	if s1 == nil || s2 == nil {
		t.Fatalf("expected two study sessions, got %+v / %+v", s1, s2)
	}
	if s2.DurationMinute != 120 || s1.DurationMinute != 30 {
		t.Fatalf("want 30 before / 120 after, got %d/%d", s1.DurationMinute, s2.DurationMinute)
	}
	if s1.Label != LabelStudy+"①" || s2.Label != LabelStudy+"②" {
		t.Fatalf("want ordinal labels, got %q / %q", s1.Label, s2.Label)
	}
}

func TestBuildSplit_OvertimeGoesNegative(t *testing.T) {
	// 22:30 arrival with dinner and laundry: dinner alone ends past bedtime.
	in := PlannerInput{ArrivalHour: 22, ArrivalMinute: 30, HasDinner: true, HasLaundry: true, StudyMinutes: 60}
	events := BuildSchedule(in, PolicySplit)

	if got := TotalFreeTime(events); got >= 0 {
		t.Fatalf("want negative free time, got %d", got)
	}
	if !Overtime(events) {
		t.Fatal("want overtime")
	}
	if eventByID(events, "study1") != nil || eventByID(events, "study2") != nil {
		t.Fatal("no window has capacity, study must be dropped")
	}
}

func TestBuildSchedule_TogglesSuppressEvents(t *testing.T) {
	for _, p := range []Policy{PolicySplit, PolicyFixedBath} {
		in := PlannerInput{ArrivalHour: 19, ArrivalMinute: 0, StudyMinutes: 30}
		events := BuildSchedule(in, p)
		for _, e := range events {
			if e.Label == LabelDinner {
				t.Fatalf("%s: dinner disabled but emitted", p)
			}
			if e.Label == LabelLaundry {
				t.Fatalf("%s: laundry disabled but emitted", p)
			}
		}
	}
}

func TestBuildSchedule_ZeroStudyDoesNotCrash(t *testing.T) {
	for _, p := range []Policy{PolicySplit, PolicyFixedBath} {
		in := PlannerInput{ArrivalHour: 19, ArrivalMinute: 0, HasDinner: true}
		events := BuildSchedule(in, p)
		for _, e := range events {
			if e.ID == "study" || e.ID == "study1" || e.ID == "study2" {
				t.Fatalf("%s: zero study emitted %q", p, e.ID)
			}
		}
	}
}

func TestBuildSchedule_AnchorsAndContiguity(t *testing.T) {
	inputs := []PlannerInput{
		{ArrivalHour: 17, ArrivalMinute: 0, HasDinner: true, HasLaundry: true, StudyMinutes: 60},
		{ArrivalHour: 19, ArrivalMinute: 10, HasDinner: true, StudyMinutes: 45},
		{ArrivalHour: 20, ArrivalMinute: 50, HasLaundry: true, StudyMinutes: 30},
		{ArrivalHour: 22, ArrivalMinute: 30, HasDinner: true, HasLaundry: true, StudyMinutes: 60},
		{ArrivalHour: 6, ArrivalMinute: 0, StudyMinutes: 30},
	}
	for _, p := range []Policy{PolicySplit, PolicyFixedBath} {
		for _, in := range inputs {
			events := BuildSchedule(in, p)
			first := events[0]
			if first.ID != "arrival" || first.Kind != KindMarker || first.StartMinute != in.ArrivalMinutes() {
				t.Fatalf("%s %+v: bad arrival marker %+v", p, in, first)
			}
			last := events[len(events)-1]
			if last.ID != "bed" || last.Kind != KindMarker || last.StartMinute != BedTime {
				t.Fatalf("%s %+v: bad bed marker %+v", p, in, last)
			}
			// Every event but the pinned bed marker follows its predecessor.
			for i := 0; i < len(events)-2; i++ {
				wantStart := events[i].StartMinute + events[i].DurationMinute
				if events[i+1].StartMinute != wantStart {
					t.Fatalf("%s %+v: gap between %q and %q (%d != %d)",
						p, in, events[i].ID, events[i+1].ID, events[i+1].StartMinute, wantStart)
				}
			}
		}
	}
}

func TestBuildSchedule_Deterministic(t *testing.T) {
	in := PlannerInput{ArrivalHour: 18, ArrivalMinute: 40, HasDinner: true, HasLaundry: true, StudyMinutes: 55}
	for _, p := range []Policy{PolicySplit, PolicyFixedBath} {
		a := BuildSchedule(in, p)
		b := BuildSchedule(in, p)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("%s: identical input produced different schedules", p)
		}
	}
}

func TestBuildSplit_StudyAllocationMonotonic(t *testing.T) {
	base := PlannerInput{ArrivalHour: 17, ArrivalMinute: 0, HasDinner: true, HasLaundry: true}
	prev := -1
	for study := 0; study <= 60; study += 5 {
		in := base
		in.StudyMinutes = study
		total := 0
		for _, e := range BuildSchedule(in, PolicySplit) {
			if e.ID == "study1" || e.ID == "study2" {
				total += e.DurationMinute
			}
		}
		if total < prev {
			t.Fatalf("study=%d scheduled %d, less than previous %d", study, total, prev)
		}
		prev = total
	}
}

func TestBuildFixedBath_WaitsForIdealBath(t *testing.T) {
	// 18:00 arrival + dinner ends 19:00; bath holds until 21:00 with a
	// 2 hour free gap in between.
	in := PlannerInput{ArrivalHour: 18, ArrivalMinute: 0, HasDinner: true, StudyMinutes: 30}
	events := BuildSchedule(in, PolicyFixedBath)

	gap := eventByID(events, "free1")
	if gap == nil || gap.StartMinute != 19*60 || gap.DurationMinute != 120 {
		t.Fatalf("unexpected gap: %+v", gap)
	}
	bath := eventByID(events, "bath")
	if bath == nil || bath.StartMinute != 21*60 {
		t.Fatalf("bath should start at 21:00, got %+v", bath)
	}
	study := eventByID(events, "study")
	if study == nil || study.StartMinute != 22*60 || study.DurationMinute != 30 {
		t.Fatalf("unexpected study: %+v", study)
	}
	if got := TotalFreeTime(events); got != 150 {
		t.Fatalf("want 150 free minutes, got %d", got)
	}
}

func TestBuildFixedBath_LateArrivalSkipsGap(t *testing.T) {
	in := PlannerInput{ArrivalHour: 21, ArrivalMinute: 30, HasDinner: true, StudyMinutes: 60}
	events := BuildSchedule(in, PolicyFixedBath)

	if eventByID(events, "free1") != nil {
		t.Fatal("past 21:00 the bath starts immediately, no gap")
	}
	bath := eventByID(events, "bath")
	if bath == nil || bath.StartMinute != 22*60+30 {
		t.Fatalf("bath should follow dinner directly, got %+v", bath)
	}
	if !Overtime(events) {
		t.Fatal("dinner+bath+study from 21:30 overruns bedtime")
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy(" Split "); err != nil || p != PolicySplit {
		t.Fatalf("want split, got %v %v", p, err)
	}
	if p, err := ParsePolicy("fixed-bath"); err != nil || p != PolicyFixedBath {
		t.Fatalf("want fixed-bath, got %v %v", p, err)
	}
	if _, err := ParsePolicy("greedy"); err == nil {
		t.Fatal("want error for unknown policy")
	}
}

func TestValidate(t *testing.T) {
	lim := DefaultLimits()
	ok := PlannerInput{ArrivalHour: 19, ArrivalMinute: 30, StudyMinutes: 45}
	if err := ok.Validate(lim); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []PlannerInput{
		{ArrivalHour: 24, ArrivalMinute: 0, StudyMinutes: 30},
		{ArrivalHour: -1, ArrivalMinute: 0, StudyMinutes: 30},
		{ArrivalHour: 19, ArrivalMinute: 15, StudyMinutes: 30}, // off the 10 min grid
		{ArrivalHour: 19, ArrivalMinute: 0, StudyMinutes: 25},
		{ArrivalHour: 19, ArrivalMinute: 0, StudyMinutes: 90},
	}
	for _, in := range cases {
		if err := in.Validate(lim); err == nil {
			t.Fatalf("%+v should be rejected", in)
		}
	}
	// Zero study stays legal even though the UI range starts at 30.
	zero := PlannerInput{ArrivalHour: 19, ArrivalMinute: 0}
	if err := zero.Validate(lim); err != nil {
		t.Fatalf("zero study should validate: %v", err)
	}
}
