package calllog

import (
	"context"
	"errors"
	"testing"
)

type fakeAPI struct {
	records   []Record
	listCalls int
	saveErr   error
	saved     []string
}

func (f *fakeAPI) List(ctx context.Context, teamID, memberID string) ([]Record, error) {
	f.listCalls++
	return f.records, nil
}

func (f *fakeAPI) SaveFeedback(ctx context.Context, memberID, sessionID, feedback string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, memberID+"/"+sessionID)
	return nil
}

func TestRecords_LoadsOnceThenServesSnapshot(t *testing.T) {
	api := &fakeAPI{records: []Record{{MemberID: "m1", SessionID: "s1"}}}
	svc := NewService(api)

	for i := 0; i < 3; i++ {
		got, err := svc.Records(context.Background(), "t1", "m1")
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 record, got %d", len(got))
		}
	}
	if api.listCalls != 1 {
		t.Fatalf("expected one upstream fetch, got %d", api.listCalls)
	}
}

func TestLoad_ReplacesSnapshot(t *testing.T) {
	api := &fakeAPI{records: []Record{{MemberID: "m1", SessionID: "s1"}}}
	svc := NewService(api)

	if _, err := svc.Records(context.Background(), "t1", "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	api.records = append(api.records, Record{MemberID: "m1", SessionID: "s2"})
	got, err := svc.Load(context.Background(), "t1", "m1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected refreshed snapshot with 2 records, got %d", len(got))
	}
}

func TestSaveFeedback_PatchesOnlyMatchingPair(t *testing.T) {
	api := &fakeAPI{records: []Record{
		{MemberID: "m1", SessionID: "s1"},
		{MemberID: "m1", SessionID: "s2"},
		{MemberID: "m2", SessionID: "s1"},
	}}
	svc := NewService(api)

	if _, err := svc.Records(context.Background(), "t1", "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := svc.SaveFeedback(context.Background(), "t1", "m1", "s1", "nice opener"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got, _ := svc.Records(context.Background(), "t1", "m1")
	for _, r := range got {
		want := ""
		if r.MemberID == "m1" && r.SessionID == "s1" {
			want = "nice opener"
		}
		if r.ManagerFeedback != want {
			t.Fatalf("record %s/%s: feedback %q, want %q", r.MemberID, r.SessionID, r.ManagerFeedback, want)
		}
	}
}

func TestSaveFeedback_UpstreamFailureLeavesSnapshotUntouched(t *testing.T) {
	api := &fakeAPI{records: []Record{{MemberID: "m1", SessionID: "s1"}}}
	svc := NewService(api)

	if _, err := svc.Records(context.Background(), "t1", "m1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	api.saveErr = errors.New("boom")
	if err := svc.SaveFeedback(context.Background(), "t1", "m1", "s1", "x"); err == nil {
		t.Fatalf("expected error")
	}

	got, _ := svc.Records(context.Background(), "t1", "m1")
	if got[0].ManagerFeedback != "" {
		t.Fatalf("expected snapshot untouched, got %q", got[0].ManagerFeedback)
	}
}
