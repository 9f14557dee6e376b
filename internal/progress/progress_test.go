package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/oleg-peresada/coyote/pkg/logx"
)

func TestTrackerSnapshot(t *testing.T) {
	t.Parallel()
	var tr Tracker
	tr.Line()
	tr.Line()
	tr.Record()
	tr.Creation()
	tr.Switch()
	tr.Reset()
	tr.Anomaly()

	got := tr.Snapshot()
	want := Snapshot{Lines: 2, Records: 1, Creations: 1, Switches: 1, Resets: 1, Anomalies: 1}
	if got != want {
		t.Fatalf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestTrackerConcurrent(t *testing.T) {
	t.Parallel()
	var tr Tracker
	var wg sync.WaitGroup
	const workers, each = 8, 1000
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				tr.Line()
			}
		}()
	}
	wg.Wait()
	if got := tr.Snapshot().Lines; got != workers*each {
		t.Fatalf("Lines = %d, want %d", got, workers*each)
	}
}

func TestValidateSchedule(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{"descriptor", "@every 30s", false},
		{"five fields", "*/5 * * * *", false},
		{"six fields with seconds", "*/10 * * * * *", false},
		{"empty", "", true},
		{"garbage", "whenever", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateSchedule(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSchedule(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestReporterStartStop(t *testing.T) {
	t.Parallel()
	var tr Tracker
	r := NewReporter(&tr, logx.Nop())
	if err := r.Start("@every 1h"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	// Second start is a no-op.
	if err := r.Start("@every 1h"); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	r.Stop(context.Background())
	// Stop after stop is safe.
	r.Stop(context.Background())
}

func TestReporterRejectsBadSchedule(t *testing.T) {
	t.Parallel()
	r := NewReporter(&Tracker{}, logx.Nop())
	if err := r.Start("not a schedule"); err == nil {
		t.Fatal("Start() accepted a bad schedule")
	}
	r.Stop(context.Background())
}
