// Package time gives scripts wall-clock time as float seconds since the
// Unix epoch. Inside a running event loop the loop's clock is used, so that
// timing agrees with asyncio.sleep.
package time

import (
	"context"
	"time"

	"github.com/t0technology/awaitless/eventloop"
	"github.com/t0technology/awaitless/object"
)

func clock(ctx context.Context) time.Time {
	if loop := eventloop.FromContext(ctx); loop != nil {
		return loop.Now()
	}
	return time.Now()
}

func seconds(t time.Time) object.Object {
	return object.NewFloat(float64(t.UnixNano()) / float64(time.Second))
}

func fromSeconds(s float64) time.Time {
	return time.Unix(0, int64(s*float64(time.Second)))
}

func Now(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("time.now", 0, args); err != nil {
		return nil, err
	}
	return seconds(clock(ctx)), nil
}

func Unix(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("time.unix", 2, args); err != nil {
		return nil, err
	}
	sec, err := object.AsInt(args[0])
	if err != nil {
		return nil, err
	}
	nsec, err := object.AsInt(args[1])
	if err != nil {
		return nil, err
	}
	return seconds(time.Unix(sec, nsec)), nil
}

func Parse(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("time.parse", 2, args); err != nil {
		return nil, err
	}
	layout, err := object.AsString(args[0])
	if err != nil {
		return nil, err
	}
	value, err := object.AsString(args[1])
	if err != nil {
		return nil, err
	}
	t, parseErr := time.Parse(layout, value)
	if parseErr != nil {
		return nil, object.ValueErrorf("time.parse: %s", parseErr)
	}
	return seconds(t), nil
}

// Format renders a timestamp in UTC with a Go layout, RFC3339 by default.
func Format(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.RequireRange("time.format", 1, 2, args); err != nil {
		return nil, err
	}
	s, err := object.AsFloat(args[0])
	if err != nil {
		return nil, err
	}
	layout := time.RFC3339
	if len(args) == 2 {
		if layout, err = object.AsString(args[1]); err != nil {
			return nil, err
		}
	}
	return object.NewString(fromSeconds(s).UTC().Format(layout)), nil
}

func Since(ctx context.Context, args ...object.Object) (object.Object, error) {
	if err := object.Require("time.since", 1, args); err != nil {
		return nil, err
	}
	s, err := object.AsFloat(args[0])
	if err != nil {
		return nil, err
	}
	return object.NewFloat(clock(ctx).Sub(fromSeconds(s)).Seconds()), nil
}

func Module() *object.Module {
	return object.NewBuiltinsModule("time", map[string]object.Object{
		"now":         object.NewBuiltin("now", Now),
		"format":      object.NewBuiltin("format", Format),
		"parse":       object.NewBuiltin("parse", Parse),
		"since":       object.NewBuiltin("since", Since),
		"unix":        object.NewBuiltin("unix", Unix),
		"ANSIC":       object.NewString(time.ANSIC),
		"RFC1123":     object.NewString(time.RFC1123),
		"RFC3339":     object.NewString(time.RFC3339),
		"RFC3339Nano": object.NewString(time.RFC3339Nano),
		"Kitchen":     object.NewString(time.Kitchen),
		"DateTime":    object.NewString(time.DateTime),
	})
}
