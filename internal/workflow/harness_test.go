package workflow_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tablescout/tablescout/internal/workflow"
	"github.com/tablescout/tablescout/pkg/adapters/memory"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
	"github.com/tablescout/tablescout/pkg/registry"
	"github.com/tablescout/tablescout/pkg/session"
)

// Shared fixtures for the engine tests: scripted collaborators over the
// in-memory stores. Each test wires only the sources and answers it needs.

// stubSearcher serves canned mentions per source, optionally failing a fixed
// number of times first. One instance can back every registered source.
type stubSearcher struct {
	mu       sync.Mutex
	mentions map[domain.SourceID][]domain.Mention
	failN    map[domain.SourceID]int
	calls    map[domain.SourceID]int
}

func newStubSearcher() *stubSearcher {
	return &stubSearcher{
		mentions: make(map[domain.SourceID][]domain.Mention),
		failN:    make(map[domain.SourceID]int),
		calls:    make(map[domain.SourceID]int),
	}
}

func (s *stubSearcher) serve(source domain.SourceID, texts ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, text := range texts {
		s.mentions[source] = append(s.mentions[source], domain.Mention{Source: source, Content: text})
	}
}

func (s *stubSearcher) failFirst(source domain.SourceID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failN[source] = n
}

func (s *stubSearcher) callCount(source domain.SourceID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[source]
}

func (s *stubSearcher) Search(ctx context.Context, source domain.SourceID, location string) ([]domain.Mention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[source]++
	if s.failN[source] > 0 {
		s.failN[source]--
		return nil, fmt.Errorf("%w: %s search timed out", domain.ErrCollaboratorUnavailable, source)
	}
	return s.mentions[source], nil
}

// stubEvaluator answers extraction and ranking from lookup tables. A rank
// key absent from the table means the source is silent on that candidate.
type stubEvaluator struct {
	mu        sync.Mutex
	extract   map[domain.SourceID][]domain.Candidate
	ranks     map[string]float64
	rankFailN map[string]int
	edits     map[string]domain.EditCommand
	editFailN int
	rankCalls map[string]int
}

func newStubEvaluator() *stubEvaluator {
	return &stubEvaluator{
		extract:   make(map[domain.SourceID][]domain.Candidate),
		ranks:     make(map[string]float64),
		rankFailN: make(map[string]int),
		edits:     make(map[string]domain.EditCommand),
		rankCalls: make(map[string]int),
	}
}

func rankKey(source domain.SourceID, name string) string {
	return string(source) + "|" + domain.NormalizeName(name)
}

func (s *stubEvaluator) extracts(source domain.SourceID, cands ...domain.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extract[source] = cands
}

func (s *stubEvaluator) scores(source domain.SourceID, name string, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranks[rankKey(source, name)] = score
}

func (s *stubEvaluator) failRankFirst(source domain.SourceID, name string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rankFailN[rankKey(source, name)] = n
}

func (s *stubEvaluator) parsesEdit(utterance string, cmd domain.EditCommand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits[utterance] = cmd
}

func (s *stubEvaluator) Extract(ctx context.Context, source domain.SourceID, mentions []domain.Mention) ([]domain.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Candidate, len(s.extract[source]))
	for i, c := range s.extract[source] {
		out[i] = c.Clone()
	}
	return out, nil
}

func (s *stubEvaluator) Rank(ctx context.Context, candidate domain.Candidate, source domain.SourceID, evalCtx ports.EvalContext) (float64, string, error) {
	key := rankKey(source, candidate.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rankCalls[key]++
	if s.rankFailN[key] > 0 {
		s.rankFailN[key]--
		return 0, "", fmt.Errorf("%w: rank call returned no JSON", domain.ErrMalformedResponse)
	}
	score, ok := s.ranks[key]
	if !ok {
		return 0, "", domain.ErrSourceSilent
	}
	return score, fmt.Sprintf("Praised by %s.", source), nil
}

func (s *stubEvaluator) ParseEdit(ctx context.Context, utterance string) (domain.EditCommand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editFailN > 0 {
		s.editFailN--
		return domain.EditCommand{}, fmt.Errorf("%w: edit parse failed", domain.ErrCollaboratorUnavailable)
	}
	if cmd, ok := s.edits[utterance]; ok {
		return cmd, nil
	}
	return domain.EditCommand{Action: domain.EditUnknown}, nil
}

// flakyList wraps the in-memory list with scripted failures.
type flakyList struct {
	*memory.List

	mu          sync.Mutex
	fetchFailN  int
	appendFailN map[string]int
}

func newFlakyList(seed ...domain.ListEntry) *flakyList {
	return &flakyList{
		List:        memory.NewList(seed...),
		appendFailN: make(map[string]int),
	}
}

func (l *flakyList) failFetchFirst(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetchFailN = n
}

func (l *flakyList) failAppendFirst(name string, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendFailN[domain.NormalizeName(name)] = n
}

func (l *flakyList) FetchAll(ctx context.Context) ([]domain.ListEntry, error) {
	l.mu.Lock()
	if l.fetchFailN > 0 {
		l.fetchFailN--
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: list backend unreachable", domain.ErrCollaboratorUnavailable)
	}
	l.mu.Unlock()
	return l.List.FetchAll(ctx)
}

func (l *flakyList) Append(ctx context.Context, entry domain.ListEntry) error {
	key := domain.NormalizeName(entry.Name)

	l.mu.Lock()
	if l.appendFailN[key] > 0 {
		l.appendFailN[key]--
		l.mu.Unlock()
		return fmt.Errorf("%w: append rejected", domain.ErrCollaboratorUnavailable)
	}
	l.mu.Unlock()
	return l.List.Append(ctx, entry)
}

// harness bundles an engine with its scripted collaborators.
type harness struct {
	engine *workflow.Engine
	store  *memory.Store
	list   *flakyList
	search *stubSearcher
	eval   *stubEvaluator
}

// newHarness wires an engine over in-memory stores with the given sources
// registered against one shared scripted searcher.
func newHarness(sources []domain.SourceID, seed []domain.ListEntry, opts ...workflow.EngineOption) *harness {
	h := &harness{
		store:  memory.NewStore(),
		list:   newFlakyList(seed...),
		search: newStubSearcher(),
		eval:   newStubEvaluator(),
	}

	reg := registry.NewRegistry()
	for _, src := range sources {
		reg.Register(src, h.search)
	}

	h.engine = workflow.NewEngine(session.NewManager(h.store), reg, h.eval, h.list, opts...)
	return h
}

func candidate(name, description, cuisine string, price domain.PriceTier) domain.Candidate {
	return domain.Candidate{
		Name:        name,
		Description: description,
		Cuisine:     cuisine,
		Price:       price,
	}
}

func seedEntry(name string, addedAt time.Time) domain.ListEntry {
	return domain.NewListEntry(domain.Candidate{Name: name}, addedAt)
}
