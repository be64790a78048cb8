package weather

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmgrid/internal/grid"
	"farmgrid/internal/httputil"
	"farmgrid/internal/logging"
)

func init() { logging.Discard() }

func fp(v float64) *float64 { return &v }

func TestLeadingMean(t *testing.T) {
	cases := []struct {
		name   string
		series []*float64
		want   float64
	}{
		{"empty", nil, 0},
		{"short", []*float64{fp(2), fp(4)}, 3},
		{"window", []*float64{fp(1), fp(2), fp(3), fp(4), fp(5), fp(100)}, 3},
		{"nulls count as zero", []*float64{fp(10), nil, fp(5), nil, nil}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, leadingMean(tc.series, DefaultWindow), 1e-9)
		})
	}
}

const forecastBody = `{
  "latitude": 52.5,
  "hourly": {
    "time": ["t0","t1","t2","t3","t4","t5"],
    "temperature_2m": [10, 12, 14, 16, 18, 99],
    "relative_humidity_2m": [60, 60, 60, 60, 60],
    "weather_code": [1, 1, 1, 1, 1],
    "cloud_cover": [100, null, 50, 0, 0],
    "precipitation": [1, 1],
    "wind_speed_120m": []
  }
}`

func TestOpenMeteoForecast(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	om := &OpenMeteo{Client: httputil.NewStandardClient(nil, 0), Endpoint: srv.URL, APIKey: "k"}
	s, err := om.Forecast(context.Background(), grid.Coord{Lat: 52.5, Lon: 13.4})
	require.NoError(t, err)

	assert.InDelta(t, 14, s.Temperature, 1e-9)
	assert.InDelta(t, 60, s.Humidity, 1e-9)
	assert.InDelta(t, 30, s.CloudCover, 1e-9)
	assert.InDelta(t, 1, s.Precipitation, 1e-9)
	assert.Equal(t, 0.0, s.WindSpeed)

	assert.Contains(t, query, "latitude=52.5")
	assert.Contains(t, query, "longitude=13.4")
	assert.Contains(t, query, "timezone=GMT")
	assert.Contains(t, query, "apikey=k")
	assert.Contains(t, query, "wind_speed_120m")
}

func TestOpenMeteoErrors(t *testing.T) {
	ctx := context.Background()
	at := grid.Coord{Lat: 1, Lon: 2}

	mock := httputil.NewMockHTTPClient()
	om := &OpenMeteo{Client: mock, Endpoint: "http://forecast.test"}

	_, err := om.Forecast(ctx, grid.Coord{Lat: math.NaN(), Lon: 1})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	assert.Equal(t, 0, mock.RequestCount())

	mock.DefaultStatus = http.StatusInternalServerError
	_, err = om.Forecast(ctx, at)
	assert.ErrorIs(t, err, ErrBadResponse)

	mock.DefaultStatus = http.StatusOK
	mock.DefaultBody = "not json"
	_, err = om.Forecast(ctx, at)
	assert.ErrorIs(t, err, ErrBadResponse)

	mock.DefaultBody = `{"daily": {}}`
	_, err = om.Forecast(ctx, at)
	assert.ErrorIs(t, err, ErrBadResponse)

	mock.DoFunc = func(*http.Request) (*http.Response, error) { return nil, errors.New("dial") }
	_, err = om.Forecast(ctx, at)
	assert.Error(t, err)
}

func TestCacheDeduplicates(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	f := ForecasterFunc(func(ctx context.Context, c grid.Coord) (Sample, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return Sample{Temperature: c.Lat}, nil
	})
	cache := NewCache(f, 4, 16)

	var wg sync.WaitGroup
	readings := make([]Reading, 8)
	for i := range readings {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			readings[i] = cache.Lookup(context.Background(), 1, grid.Coord{Lat: 3, Lon: 4})
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range readings {
		assert.NoError(t, r.Err)
		assert.Equal(t, 3.0, r.Sample.Temperature)
	}
}

func TestCacheRemembersFailurePerGeneration(t *testing.T) {
	var calls int32
	f := ForecasterFunc(func(ctx context.Context, c grid.Coord) (Sample, error) {
		atomic.AddInt32(&calls, 1)
		return Sample{}, errors.New("down")
	})
	cache := NewCache(f, 2, 16)
	at := grid.Coord{Lat: 1, Lon: 1}

	r := cache.Lookup(context.Background(), 1, at)
	assert.Error(t, r.Err)
	assert.Equal(t, Fallback, r.Sample)

	r = cache.Lookup(context.Background(), 1, at)
	assert.Error(t, r.Err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	cache.Lookup(context.Background(), 2, at)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCacheInvalidCoordinateSkipsForecaster(t *testing.T) {
	f := ForecasterFunc(func(context.Context, grid.Coord) (Sample, error) {
		t.Fatal("forecaster called for invalid coordinate")
		return Sample{}, nil
	})
	r := NewCache(f, 1, 1).Lookup(context.Background(), 1, grid.Coord{Lat: math.Inf(1)})
	assert.ErrorIs(t, r.Err, ErrInvalidCoordinate)
	assert.Equal(t, Fallback, r.Sample)
}

func testCoords() grid.CoordinateMatrix {
	var m grid.CoordinateMatrix
	for i := 0; i < grid.Cells; i++ {
		m.Set(grid.CellAt(i), grid.Coord{Lat: 50 + float64(i)*0.001, Lon: 10})
	}
	return m
}

func TestAggregateOneInvalidCoordinate(t *testing.T) {
	computed := Sample{Temperature: 11, Humidity: 70, Precipitation: 2, CloudCover: 80, WindSpeed: 6}
	f := ForecasterFunc(func(context.Context, grid.Coord) (Sample, error) { return computed, nil })

	coords := testCoords()
	bad := grid.Cell{Row: 4, Col: 9}
	coords.Set(bad, grid.Coord{Lat: math.NaN(), Lon: 10})

	agg := &Aggregator{Cache: NewCache(f, 8, 512), Limit: 16}
	g := agg.Aggregate(context.Background(), coords, 1)

	assert.Equal(t, 1, g.Fallbacks)
	assert.True(t, g.Fallback.At(bad))
	assert.Equal(t, Fallback, g.At(bad))

	computedCells := 0
	for i := 0; i < grid.Cells; i++ {
		c := grid.CellAt(i)
		if c == bad {
			continue
		}
		if g.At(c) == computed {
			computedCells++
		}
	}
	assert.Equal(t, grid.Cells-1, computedCells)
	assert.InDelta(t, (255*11+20)/256.0, g.Summary.Temperature, 1e-9)
}

func TestAggregateFailuresAreIsolated(t *testing.T) {
	f := ForecasterFunc(func(_ context.Context, c grid.Coord) (Sample, error) {
		if int(math.Round((c.Lat-50)*1000))%4 == 0 {
			return Sample{}, errors.New("timeout")
		}
		return Sample{Temperature: 30}, nil
	})
	agg := &Aggregator{Cache: NewCache(f, 4, 512), Limit: 4}
	g := agg.Aggregate(context.Background(), testCoords(), 7)

	assert.Equal(t, 64, g.Fallbacks)
	assert.Equal(t, 64, grid.Count(&g.Temperature, func(v float64) bool { return v == 20 }))
	assert.Equal(t, 192, grid.Count(&g.Temperature, func(v float64) bool { return v == 30 }))
}

func TestAggregatePlacesByCell(t *testing.T) {
	f := ForecasterFunc(func(_ context.Context, c grid.Coord) (Sample, error) {
		return Sample{Humidity: c.Lat}, nil
	})
	coords := testCoords()
	g := (&Aggregator{Cache: NewCache(f, 16, 512)}).Aggregate(context.Background(), coords, 1)
	coords.Each(func(cell grid.Cell, c grid.Coord) {
		assert.Equal(t, c.Lat, g.Humidity.At(cell))
	})
}
