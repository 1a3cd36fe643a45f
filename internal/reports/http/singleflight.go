package http

import (
	"context"

	"golang.org/x/sync/singleflight"
)

var statementGroup singleflight.Group

// singleflightBuild collapses concurrent builds of the same statement.
// Statement construction reads the whole period's postings, so stampedes
// on a popular client/period pair would otherwise multiply the load.
func singleflightBuild(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error, bool) {
	resultChan := statementGroup.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
