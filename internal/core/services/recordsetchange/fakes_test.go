package recordsetchange

import (
	"context"

	"github.com/poyrazK/cloudDNS/internal/core/domain"
	"github.com/poyrazK/cloudDNS/internal/core/ports"
)

// fakeConnector is a hand-rolled ports.DnsConnector fake that answers
// DnsResolve from a canned queue and counts calls, mirroring the style of
// the teacher's mockRepo in dns_service_test.go.
type fakeConnector struct {
	resolveAnswers []resolveAnswer
	resolveCalls   int
	updateErr      *ports.DnsError
	updateCalls    int
}

type resolveAnswer struct {
	sets []domain.RecordSet
	err  *ports.DnsError
}

func (f *fakeConnector) DnsResolve(_ context.Context, _, _ string, _ domain.RecordType) ([]domain.RecordSet, *ports.DnsError) {
	idx := f.resolveCalls
	f.resolveCalls++
	if idx >= len(f.resolveAnswers) {
		last := f.resolveAnswers[len(f.resolveAnswers)-1]
		return last.sets, last.err
	}
	a := f.resolveAnswers[idx]
	return a.sets, a.err
}

func (f *fakeConnector) DnsUpdate(_ context.Context, _ *domain.RecordSetChange) (*ports.DnsResponse, *ports.DnsError) {
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &ports.DnsResponse{Code: "NoError"}, nil
}

// fakeRecordSetRepo backs both ports.RecordSetRepository and the bypass
// rule's wildcard lookup.
type fakeRecordSetRepo struct {
	wildcards  map[string][]domain.RecordSet
	applyCalls int
	lastApply  *domain.ChangeSet
}

func (f *fakeRecordSetRepo) Apply(_ context.Context, cs *domain.ChangeSet) (*domain.ChangeSet, error) {
	f.applyCalls++
	f.lastApply = cs
	return cs, nil
}

func (f *fakeRecordSetRepo) GetRecordSets(_ context.Context, _ string, name string, rtype domain.RecordType) ([]domain.RecordSet, error) {
	key := name + "/" + string(rtype)
	return f.wildcards[key], nil
}

// fakeRecordChangeRepo backs ports.RecordChangeRepository.
type fakeRecordChangeRepo struct {
	saveCalls int
	lastSave  *domain.ChangeSet
}

func (f *fakeRecordChangeRepo) Save(_ context.Context, cs *domain.ChangeSet) (*domain.ChangeSet, error) {
	f.saveCalls++
	f.lastSave = cs
	return cs, nil
}

// fakeBatchChangeRepo backs ports.BatchChangeRepository.
type fakeBatchChangeRepo struct {
	batches    map[string]*domain.BatchChange
	saveCalls  int
	savedIDs   []string
}

func (f *fakeBatchChangeRepo) GetBatchChange(_ context.Context, id string) (*domain.BatchChange, error) {
	return f.batches[id], nil
}

func (f *fakeBatchChangeRepo) FindBatchChangesForSingleChanges(_ context.Context, singleChangeIDs []string) ([]*domain.BatchChange, error) {
	owned := make(map[string]bool, len(singleChangeIDs))
	for _, id := range singleChangeIDs {
		owned[id] = true
	}
	seen := make(map[string]bool)
	var out []*domain.BatchChange
	for _, b := range f.batches {
		if seen[b.ID] {
			continue
		}
		for _, sc := range b.Changes {
			if owned[sc.ID] {
				out = append(out, b)
				seen[b.ID] = true
				break
			}
		}
	}
	return out, nil
}

func (f *fakeBatchChangeRepo) SaveBatchChange(_ context.Context, batch *domain.BatchChange) (*domain.BatchChange, error) {
	f.saveCalls++
	f.savedIDs = append(f.savedIDs, batch.ID)
	f.batches[batch.ID] = batch
	return batch, nil
}
