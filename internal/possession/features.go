package possession

import (
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/match"
	"github.com/pitchlab/tactics.report/internal/metrics"
	"github.com/pitchlab/tactics.report/internal/pitch"
)

// FeatureExtractor turns sequences into fixed-length vectors for the
// pattern detector. Mirrored xT lookups are used for the team attacking
// the negative axis, so features are direction-invariant.
type FeatureExtractor struct {
	dims       pitch.Dimensions
	xt         *metrics.XTGrid
	homeTeamID string
}

// NewFeatureExtractor loads the xT surface and binds pitch dimensions and
// the home side (home attacks the positive axis by convention).
func NewFeatureExtractor(dims pitch.Dimensions, homeTeamID string) (*FeatureExtractor, error) {
	xt, err := metrics.LoadXTGrid()
	if err != nil {
		return nil, fault.Wrap(fault.Internal, err, "load xt grid")
	}
	return &FeatureExtractor{dims: dims, xt: xt, homeTeamID: homeTeamID}, nil
}

// Features returns the sequence's 15-dim vector, computing and caching it
// on first use. An empty sequence is rejected.
func (fx *FeatureExtractor) Features(s *Sequence) ([]float64, error) {
	if s.features != nil {
		return s.features, nil
	}
	if len(s.Events) == 0 {
		return nil, fault.New(fault.BadInput, "sequence %s has no events", s.SequenceID)
	}

	lookup := fx.xt.Lookup
	if s.TeamID != fx.homeTeamID {
		lookup = fx.xt.LookupMirrored
	}

	var passes, carries, dribbles, shots float64
	for _, e := range s.Events {
		switch e.Kind {
		case match.Pass:
			passes++
		case match.Carry:
			carries++
		case match.Dribble:
			dribbles++
		case match.Shot:
			shots++
		}
	}

	startZone := s.StartZone(fx.dims)
	endZone := s.EndZone(fx.dims)
	xtStart := lookup(s.Events[0].Location, fx.dims)
	xtEnd := lookup(s.Events[len(s.Events)-1].EndOrLocation(), fx.dims)

	v := make([]float64, FeatureDim)
	v[0] = float64(startZone)
	v[1] = float64(endZone)
	v[2] = float64(endZone - startZone)
	v[3] = s.Duration()
	v[4] = float64(len(s.Events))
	v[5] = passes
	v[6] = carries
	v[7] = dribbles
	v[8] = boolFeature(shots > 0)
	v[9] = xtStart
	v[10] = xtEnd
	v[11] = xtEnd - xtStart
	v[12] = boolFeature(s.EndedInShot())
	v[13] = boolFeature(s.EndedInGoal())
	v[14] = boolFeature(s.PossessionLost())

	s.features = v
	return v, nil
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
