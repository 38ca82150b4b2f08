package time

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t0technology/awaitless/eventloop"
	"github.com/t0technology/awaitless/object"
)

func TestNowUsesLoopClock(t *testing.T) {
	fixed := time.Date(2021, 10, 1, 0, 0, 0, 0, time.UTC)
	loop := eventloop.New(eventloop.WithClock(func() time.Time { return fixed }))
	ctx := eventloop.WithLoop(context.Background(), loop)

	got, err := Now(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(fixed.Unix()), got.(*object.Float).Value())

	since, err := Since(ctx, object.NewFloat(float64(fixed.Unix()-90)))
	require.NoError(t, err)
	assert.Equal(t, 90.0, since.(*object.Float).Value())
}

func TestNowWithoutLoop(t *testing.T) {
	got, err := Now(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, float64(time.Now().Unix()), got.(*object.Float).Value(), 5)

	_, err = Now(context.Background(), object.NewInt(1))
	assert.Error(t, err)
}

func TestUnixAndFormat(t *testing.T) {
	ts, err := Unix(context.Background(), object.NewInt(1633046400), object.NewInt(500000000))
	require.NoError(t, err)
	assert.InDelta(t, 1633046400.5, ts.(*object.Float).Value(), 1e-3)

	s, err := Format(context.Background(), ts)
	require.NoError(t, err)
	assert.Equal(t, "2021-10-01T00:00:00Z", s.(*object.String).Value())

	s, err = Format(context.Background(), object.NewInt(0), object.NewString(time.DateTime))
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01 00:00:00", s.(*object.String).Value())
}

func TestParse(t *testing.T) {
	got, err := Parse(context.Background(), object.NewString(time.RFC3339), object.NewString("2021-10-01T00:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, 1633046400.0, got.(*object.Float).Value())

	_, err = Parse(context.Background(), object.NewString(time.RFC3339), object.NewString("yesterday"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ValueError")
}
