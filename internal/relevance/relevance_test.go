package relevance_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/rcliao/auto-memory/internal/keyword"
	"github.com/rcliao/auto-memory/internal/model"
	"github.com/rcliao/auto-memory/internal/relevance"
)

func TestMatches(t *testing.T) {
	cases := []struct {
		name string
		a, b []string
		want bool
	}{
		{"exact", []string{"coffee"}, []string{"coffee"}, true},
		{"memory keyword inside message keyword", []string{"coffee"}, []string{"coffeeshop"}, true},
		{"message keyword inside memory keyword", []string{"bangkok"}, []string{"bang"}, true},
		{"case", []string{"Tokyo"}, []string{"tokyo"}, true},
		{"no overlap", []string{"coffee"}, []string{"tea", "milk"}, false},
		{"empty", nil, []string{"tea"}, false},
		{"blank keyword ignored", []string{""}, []string{"tea"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, relevance.Matches(tc.a, tc.b), tc.want)
		})
	}
}

func TestScan(t *testing.T) {
	s := relevance.NewScanner(keyword.DefaultStopWords())
	records := []model.Memory{
		{ID: "1", Content: "She loves coffee", Keywords: []string{"she", "loves", "coffee"}},
		{ID: "2", Content: "He lives in Bangkok", Keywords: []string{"lives", "bangkok"}},
		{ID: "3", Content: "Her cat is named Mochi", Keywords: []string{"her", "cat", "named", "mochi"}},
	}

	got := s.Scan("Shall we grab some coffee in Bangkok?", records)
	gt.A(t, got).Length(2)
	gt.Equal(t, got[0].ID, "1")
	gt.Equal(t, got[1].ID, "2")

	gt.A(t, s.Scan("Tomorrow looks gloomy", records)).Length(0)
	gt.A(t, s.Scan("", records)).Length(0)
	gt.A(t, s.Scan("a an the", records)).Length(0)
}

type fakeSource struct {
	records []model.Memory
	touched []string
}

func (f *fakeSource) Records() []model.Memory { return f.records }
func (f *fakeSource) Touch(_ context.Context, ids []string, _ time.Time) {
	f.touched = append(f.touched, ids...)
}

type fakeInjector struct {
	calls [][]model.Memory
}

func (f *fakeInjector) Inject(_ context.Context, ms []model.Memory) {
	f.calls = append(f.calls, ms)
}

func TestApply(t *testing.T) {
	src := &fakeSource{records: []model.Memory{
		{ID: "1", Content: "She loves coffee", Keywords: []string{"coffee"}},
		{ID: "2", Content: "He owns a dog", Keywords: []string{"dog"}},
	}}
	inj := &fakeInjector{}
	s := relevance.NewScanner(nil)

	got := s.Apply(context.Background(), "more coffee please", src, inj)
	gt.A(t, got).Length(1)
	gt.True(t, got[0].LastUsed != nil)
	gt.Equal(t, src.touched, []string{"1"})
	gt.A(t, inj.calls).Length(1)

	got = s.Apply(context.Background(), "weather today", src, inj)
	gt.A(t, got).Length(0)
	gt.A(t, inj.calls).Length(1)
}
