package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/a-h/crmkv"
	"github.com/a-h/crmkv/employee"
	"github.com/google/uuid"
)

type BenchmarkCreateCommand struct {
	N int `short:"n" name:"number" help:"Number of records to create" default:"30000"`
	W int `short:"w" name:"workers" help:"Number of workers to use" default:"100"`
}

func (c *BenchmarkCreateCommand) Run(ctx context.Context, g GlobalFlags) error {
	store, err := g.Store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	fmt.Printf("Creating %d records with %d workers...\n", c.N, c.W)

	var wg sync.WaitGroup

	creates := make(chan crmkv.Record, c.W)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < c.N; i++ {
			r := crmkv.NewRecord(employee.Entity, uuid.Nil)
			r.Set(employee.FieldCode, crmkv.String(fmt.Sprintf("BENCH%05d", i)))
			r.Set(employee.FieldName, crmkv.String(fmt.Sprintf("Alice-%d", i)))
			r.Set(employee.FieldDOB, crmkv.Time(time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)))
			r.Set(employee.FieldGender, crmkv.Bool(i%2 == 0))
			r.Set(employee.FieldType, crmkv.Option(100000000))
			creates <- r
		}
		close(creates)
	}()

	start := time.Now()
	for i := 0; i < c.W; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range creates {
				if _, err := store.Create(ctx, r); err != nil {
					fmt.Printf("error: %v\n", err)
				}
			}
		}()
	}
	wg.Wait()
	end := time.Now()

	timeTaken := end.Sub(start)
	opsPerSecond := float64(c.N) / timeTaken.Seconds()
	fmt.Printf("Complete, in %v, %v ops per second\n", end.Sub(start), opsPerSecond)

	return nil
}
