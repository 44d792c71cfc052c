package hme

import (
	"context"
	"errors"

	"github.com/hmegen/hmegen/internal/common/apperrors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Chunks splits total into consecutive chunk sizes of at most MaxConcurrency.
// It returns nil for total <= 0.
func Chunks(total int) []int {
	if total <= 0 {
		return nil
	}
	sizes := make([]int, 0, (total+MaxConcurrency-1)/MaxConcurrency)
	for remaining := total; remaining > 0; remaining -= MaxConcurrency {
		sizes = append(sizes, min(remaining, MaxConcurrency))
	}
	return sizes
}

// Generator runs generate-then-reserve batches.
type Generator struct {
	api      API
	reporter Reporter
}

// NewGenerator returns a Generator. A nil reporter discards notices.
func NewGenerator(api API, reporter Reporter) *Generator {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Generator{
		api:      api,
		reporter: reporter,
	}
}

// GenerateBatch generates and reserves up to total aliases and returns the reserved
// addresses in chunk order. Chunks run one after another; within a chunk every alias is
// processed concurrently. A failed alias is reported and dropped without affecting the
// others.
//
// If ctx is cancelled, GenerateBatch stops after the current chunk settles and returns
// ctx.Err() together with every alias whose reservation completed, including those of the
// interrupted chunk. Aliases cut short by the cancellation are abandoned without a
// failure notice.
func (g *Generator) GenerateBatch(ctx context.Context, total int) ([]string, error) {
	var aliases []string
	for i, size := range Chunks(total) {
		if err := ctx.Err(); err != nil {
			return aliases, err
		}

		reserved := g.runChunk(ctx, size)
		aliases = append(aliases, reserved...)
		if err := ctx.Err(); err != nil {
			log.Debug().Int("chunk", i).Int("kept", len(reserved)).Int("abandoned", size-len(reserved)).Msg("batch interrupted")
			return aliases, err
		}

		log.Debug().Int("chunk", i).Int("size", size).Int("reserved", len(reserved)).Msg("chunk finished")
	}
	return aliases, nil
}

// runChunk processes size aliases concurrently and waits for all of them.
func (g *Generator) runChunk(ctx context.Context, size int) []string {
	slots := make([]string, size)

	var eg errgroup.Group
	eg.SetLimit(MaxConcurrency)
	for i := range size {
		eg.Go(func() error {
			slots[i] = g.generateOne(ctx)
			return nil
		})
	}
	_ = eg.Wait()

	reserved := make([]string, 0, size)
	for _, address := range slots {
		if address != "" {
			reserved = append(reserved, address)
		}
	}
	return reserved
}

// generateOne returns the reserved address, or "" if either step failed.
func (g *Generator) generateOne(ctx context.Context) string {
	env, err := g.api.GenerateAlias(ctx)
	if err != nil {
		g.failCall(ctx, StageGenerate, "", err)
		return ""
	}
	if !env.IsSuccess() {
		g.failResponse(StageGenerate, "", env)
		return ""
	}
	address, ok := env.GeneratedAddress()
	if !ok {
		g.failResponse(StageGenerate, "", env)
		return ""
	}
	g.reporter.Generated(address)

	env, err = g.api.ReserveAlias(ctx, address)
	if err != nil {
		g.failCall(ctx, StageReserve, address, err)
		return ""
	}
	if !env.IsSuccess() {
		g.failResponse(StageReserve, address, env)
		return ""
	}
	g.reporter.Reserved(address)
	log.Debug().Str("address", address).Msg("alias reserved")
	return address
}

// failCall handles a call that produced no envelope. Calls cut short by cancellation
// are only logged.
func (g *Generator) failCall(ctx context.Context, stage Stage, address string, err error) {
	ev := log.Debug().Str("stage", string(stage)).Str("address", address)
	var appErr apperrors.Error
	if errors.As(err, &appErr) {
		ev = ev.Str("detail", appErr.ErrorAll()).Int("status", appErr.StatusCode())
	}
	if ctx.Err() != nil {
		ev.Msg("alias abandoned")
		return
	}
	ev.Str("reason", err.Error()).Msg("alias dropped")
	g.reporter.Failed(stage, address, err.Error())
}

// failResponse handles an explicit failure reported by the service.
func (g *Generator) failResponse(stage Stage, address string, env *Envelope) {
	reason := env.ErrorMessage()
	log.Debug().
		Str("stage", string(stage)).
		Str("address", address).
		Str("reason", reason).
		Str("response", env.Raw()).
		Msg("alias dropped")
	g.reporter.Failed(stage, address, reason)
}
