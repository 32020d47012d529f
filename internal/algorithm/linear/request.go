package linear

import (
	"encoding/json"
	"math"
	"time"

	"ReplicaForecast/internal/algorithm"
	"ReplicaForecast/pkg/util"
)

// Observation is one scaling decision: the replica count chosen at a point in time.
type Observation struct {
	Time     string `json:"time" validate:"required"`
	Replicas *int   `json:"replicas" validate:"required"`
}

// Evaluation is the older history entry shape produced by the autoscaler's evaluation log.
type Evaluation struct {
	Created string `json:"created" validate:"required"`
	Val     struct {
		TargetReplicas *int `json:"targetReplicas" validate:"required"`
	} `json:"val"`
}

// Request is a decoded linear trend forecast request.
type Request struct {
	LookAhead      *int64        `json:"lookAhead" validate:"required"`
	ReplicaHistory []Observation `json:"replicaHistory" validate:"required_without=Evaluations,dive"`
	Evaluations    []Evaluation  `json:"evaluations" validate:"omitempty,dive"`
	CurrentTime    *string       `json:"currentTime,omitempty"`
}

// UnmarshalJSON accepts current_time as a spelling of currentTime.
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	aux := struct {
		*plain
		CurrentTimeSnake *string `json:"current_time"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.CurrentTime == nil {
		r.CurrentTime = aux.CurrentTimeSnake
	}
	return nil
}

// Point is a history entry with its timestamp resolved.
type Point struct {
	At       time.Time
	Replicas float64
}

// Series is a validated request ready for fitting.
type Series struct {
	Points    []Point
	Current   time.Time
	LookAhead time.Duration
}

// Search is the instant the forecast is made for.
func (s *Series) Search() time.Time {
	return s.Current.Add(s.LookAhead)
}

// ParseRequest decodes input and resolves all timestamps; now supplies the current time when the
// request carries none.
func ParseRequest(input []byte, now time.Time) (*Request, *Series, error) {
	req := &Request{}
	if err := algorithm.Decode(Name, input, req); err != nil {
		return nil, nil, err
	}

	series, err := req.Resolve(now)
	if err != nil {
		return nil, nil, err
	}
	return req, series, nil
}

// maxLookAheadMs is the largest look-ahead a time.Duration can hold.
const maxLookAheadMs = int64(math.MaxInt64 / time.Millisecond)

// Resolve parses the current time, then every history timestamp in order.
func (r *Request) Resolve(now time.Time) (*Series, error) {
	current := now.UTC()
	if r.CurrentTime != nil {
		t, ok := util.ParseTimestamp(*r.CurrentTime)
		if !ok {
			return nil, &algorithm.DatetimeFormatError{Value: *r.CurrentTime}
		}
		current = t
	}

	var points []Point
	if *r.LookAhead > maxLookAheadMs || *r.LookAhead < -maxLookAheadMs {
		return nil, algorithm.Computationf("lookAhead %d ms is out of range", *r.LookAhead)
	}

	if r.ReplicaHistory != nil {
		points = make([]Point, 0, len(r.ReplicaHistory))
		for _, o := range r.ReplicaHistory {
			t, ok := util.ParseTimestamp(o.Time)
			if !ok {
				return nil, &algorithm.DatetimeFormatError{Value: o.Time}
			}
			points = append(points, Point{At: t, Replicas: float64(*o.Replicas)})
		}
	} else {
		points = make([]Point, 0, len(r.Evaluations))
		for _, e := range r.Evaluations {
			t, ok := util.ParseTimestamp(e.Created)
			if !ok {
				return nil, &algorithm.DatetimeFormatError{Value: e.Created}
			}
			points = append(points, Point{At: t, Replicas: float64(*e.Val.TargetReplicas)})
		}
	}

	if len(points) == 0 {
		return nil, &algorithm.InsufficientDataError{Minimum: "1 observation"}
	}

	return &Series{
		Points:    points,
		Current:   current,
		LookAhead: time.Duration(*r.LookAhead) * time.Millisecond,
	}, nil
}

// Deterministic reports whether the forecast depends only on the request body.
func (r *Request) Deterministic() bool {
	return r.CurrentTime != nil
}
