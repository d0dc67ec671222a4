package recommend

import (
	"context"
	"sync"
	"time"

	"dishmatch"
	"dishmatch/catalog"
)

func ptr[T any](v T) *T {
	return &v
}

type fakeOracle struct {
	mu          sync.Mutex
	response    string
	err         error
	waitForDone bool
	calls       int
	instruction string
	deadline    time.Time
}

func (f *fakeOracle) Generate(ctx context.Context, instruction string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.instruction = instruction
	f.deadline, _ = ctx.Deadline()
	f.mu.Unlock()

	if f.waitForDone {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.response, f.err
}

type recordingRunLogger struct {
	runs []dishmatch.RunLog
}

func (r *recordingRunLogger) LogRun(run dishmatch.RunLog) error {
	r.runs = append(r.runs, run)
	return nil
}

func puneItems() []catalog.Item {
	return []catalog.Item{
		{
			Title:       "Vegan Buddha Bowl",
			VendorName:  "Green Leaf Kitchen",
			City:        "Pune",
			CuisineType: "Continental",
			Price:       ptr(250.0),
			Dietary:     catalog.Dietary{Vegetarian: true, Vegan: true},
			Rating:      catalog.Rating{Average: 4.2, Count: 30},
		},
		{
			Title:       "Chicken Kathi Roll",
			VendorName:  "Roll Station",
			City:        "Pune",
			CuisineType: "Street Food",
			Price:       ptr(200.0),
			Rating:      catalog.Rating{Average: 4.8, Count: 210},
		},
	}
}
