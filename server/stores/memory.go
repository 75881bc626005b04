package stores

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/mscno/collab/server/engine"
	"github.com/mscno/collab/server/model"
)

// MemoryStore keeps everything in process. Update runs against a copy of the state
// that replaces the live state only when fn succeeds, and writers are serialized.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memoryState
}

type memoryState struct {
	settings     model.Settings
	projects     map[string]model.Project
	orgs         map[string]model.Organization
	members      map[string]model.OrganizationMember // key: orgID:userID
	apps         map[string]model.ProjectApplication
	partnerships map[string]model.Partnership
	joinRequests map[string]model.OrganizationJoinRequest
	interests    map[string]model.PartnershipInterest
	orgApps      map[string]model.PartnershipApplication
	notes        map[string]model.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memoryState{
		projects:     make(map[string]model.Project),
		orgs:         make(map[string]model.Organization),
		members:      make(map[string]model.OrganizationMember),
		apps:         make(map[string]model.ProjectApplication),
		partnerships: make(map[string]model.Partnership),
		joinRequests: make(map[string]model.OrganizationJoinRequest),
		interests:    make(map[string]model.PartnershipInterest),
		orgApps:      make(map[string]model.PartnershipApplication),
		notes:        make(map[string]model.Notification),
	}}
}

func (s *memoryState) clone() *memoryState {
	return &memoryState{
		settings:     s.settings,
		projects:     maps.Clone(s.projects),
		orgs:         maps.Clone(s.orgs),
		members:      maps.Clone(s.members),
		apps:         maps.Clone(s.apps),
		partnerships: maps.Clone(s.partnerships),
		joinRequests: maps.Clone(s.joinRequests),
		interests:    maps.Clone(s.interests),
		orgApps:      maps.Clone(s.orgApps),
		notes:        maps.Clone(s.notes),
	}
}

func (m *MemoryStore) View(ctx context.Context, fn func(tx engine.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memoryTx{state: m.state})
}

func (m *MemoryStore) Update(ctx context.Context, fn func(tx engine.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.state.clone()
	if err := fn(&memoryTx{state: next, writable: true}); err != nil {
		return err
	}
	m.state = next
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

type memoryTx struct {
	state    *memoryState
	writable bool
}

func (tx *memoryTx) put() error {
	if !tx.writable {
		return ErrReadOnly
	}
	return nil
}

func get[T any](table map[string]T, id string, notFound error) (T, error) {
	v, ok := table[id]
	if !ok {
		var zero T
		return zero, notFound
	}
	return v, nil
}

func filter[T any](table map[string]T, keep func(T) bool) []T {
	var out []T
	for _, k := range slices.Sorted(maps.Keys(table)) {
		if keep(table[k]) {
			out = append(out, table[k])
		}
	}
	return out
}

func (tx *memoryTx) Settings() (model.Settings, error) {
	return tx.state.settings, nil
}

func (tx *memoryTx) PutSettings(s model.Settings) error {
	if err := tx.put(); err != nil {
		return err
	}
	tx.state.settings = s
	return nil
}

func (tx *memoryTx) Project(id string) (model.Project, error) {
	p, err := get(tx.state.projects, id, engine.ErrProjectNotFound)
	p.PartnershipTypesSought = slices.Clone(p.PartnershipTypesSought)
	return p, err
}

func (tx *memoryTx) PutProject(p model.Project) error {
	if err := tx.put(); err != nil {
		return err
	}
	p.PartnershipTypesSought = slices.Clone(p.PartnershipTypesSought)
	tx.state.projects[p.ID] = p
	return nil
}

func (tx *memoryTx) ProjectsByStatus(status model.ProjectStatus) ([]model.Project, error) {
	return filter(tx.state.projects, func(p model.Project) bool { return p.Status == status }), nil
}

func (tx *memoryTx) Organization(id string) (model.Organization, error) {
	return get(tx.state.orgs, id, engine.ErrOrganizationNotFound)
}

func (tx *memoryTx) PutOrganization(o model.Organization) error {
	if err := tx.put(); err != nil {
		return err
	}
	tx.state.orgs[o.ID] = o
	return nil
}

func (tx *memoryTx) OrganizationsByStatus(status model.OrganizationStatus) ([]model.Organization, error) {
	return filter(tx.state.orgs, func(o model.Organization) bool { return o.Status == status }), nil
}

func (tx *memoryTx) Member(orgID string, userID model.UserID) (model.OrganizationMember, error) {
	return get(tx.state.members, memberKey(orgID, userID), engine.ErrMemberNotFound)
}

func (tx *memoryTx) PutMember(m model.OrganizationMember) error {
	if err := tx.put(); err != nil {
		return err
	}
	tx.state.members[memberKey(m.OrganizationID, m.UserID)] = m
	return nil
}

func (tx *memoryTx) MembersByOrganization(orgID string) ([]model.OrganizationMember, error) {
	return filter(tx.state.members, func(m model.OrganizationMember) bool { return m.OrganizationID == orgID }), nil
}

func (tx *memoryTx) ProjectApplication(id string) (model.ProjectApplication, error) {
	return get(tx.state.apps, id, engine.ErrApplicationNotFound)
}

func (tx *memoryTx) PutProjectApplication(a model.ProjectApplication) error {
	if err := tx.put(); err != nil {
		return err
	}
	tx.state.apps[a.ID] = a
	return nil
}

func (tx *memoryTx) ProjectApplicationsByUser(userID model.UserID) ([]model.ProjectApplication, error) {
	return filter(tx.state.apps, func(a model.ProjectApplication) bool { return a.UserID == userID }), nil
}

func (tx *memoryTx) ProjectApplicationsByProject(projectID string) ([]model.ProjectApplication, error) {
	return filter(tx.state.apps, func(a model.ProjectApplication) bool { return a.ProjectID == projectID }), nil
}

func (tx *memoryTx) Partnership(id string) (model.Partnership, error) {
	return get(tx.state.partnerships, id, engine.ErrPartnershipNotFound)
}

func (tx *memoryTx) PartnershipByPair(projectID string, partnerID model.UserID) (model.Partnership, error) {
	rows := filter(tx.state.partnerships, func(p model.Partnership) bool {
		return p.ProjectID == projectID && p.PartnerID == partnerID
	})
	if len(rows) == 0 {
		return model.Partnership{}, engine.ErrPartnershipNotFound
	}
	return rows[0], nil
}

func (tx *memoryTx) PutPartnership(p model.Partnership) error {
	if err := tx.put(); err != nil {
		return err
	}
	tx.state.partnerships[p.ID] = p
	return nil
}

func (tx *memoryTx) PartnershipsByPartner(partnerID model.UserID) ([]model.Partnership, error) {
	return filter(tx.state.partnerships, func(p model.Partnership) bool { return p.PartnerID == partnerID }), nil
}

func (tx *memoryTx) PartnershipsByProject(projectID string) ([]model.Partnership, error) {
	return filter(tx.state.partnerships, func(p model.Partnership) bool { return p.ProjectID == projectID }), nil
}

func (tx *memoryTx) JoinRequest(id string) (model.OrganizationJoinRequest, error) {
	return get(tx.state.joinRequests, id, engine.ErrJoinRequestNotFound)
}

func (tx *memoryTx) PutJoinRequest(r model.OrganizationJoinRequest) error {
	if err := tx.put(); err != nil {
		return err
	}
	tx.state.joinRequests[r.ID] = r
	return nil
}

func (tx *memoryTx) JoinRequestsByOrganization(orgID string) ([]model.OrganizationJoinRequest, error) {
	return filter(tx.state.joinRequests, func(r model.OrganizationJoinRequest) bool { return r.OrganizationID == orgID }), nil
}

func (tx *memoryTx) Interest(id string) (model.PartnershipInterest, error) {
	return get(tx.state.interests, id, engine.ErrInterestNotFound)
}

func (tx *memoryTx) PutInterest(i model.PartnershipInterest) error {
	if err := tx.put(); err != nil {
		return err
	}
	tx.state.interests[i.ID] = i
	return nil
}

func (tx *memoryTx) InterestsByOrganization(orgID string) ([]model.PartnershipInterest, error) {
	return filter(tx.state.interests, func(i model.PartnershipInterest) bool { return i.OrganizationID == orgID }), nil
}

func (tx *memoryTx) PartnershipApplication(id string) (model.PartnershipApplication, error) {
	return get(tx.state.orgApps, id, engine.ErrPartnershipApplicationNotFound)
}

func (tx *memoryTx) PutPartnershipApplication(a model.PartnershipApplication) error {
	if err := tx.put(); err != nil {
		return err
	}
	tx.state.orgApps[a.ID] = a
	return nil
}

func (tx *memoryTx) PartnershipApplicationsByOrganization(orgID string) ([]model.PartnershipApplication, error) {
	return filter(tx.state.orgApps, func(a model.PartnershipApplication) bool { return a.OrganizationID == orgID }), nil
}

func (tx *memoryTx) PutNotification(n model.Notification) error {
	if err := tx.put(); err != nil {
		return err
	}
	tx.state.notes[n.ID] = n
	return nil
}

func (tx *memoryTx) NotificationsByUser(userID model.UserID) ([]model.Notification, error) {
	return filter(tx.state.notes, func(n model.Notification) bool { return n.UserID == userID }), nil
}

var _ engine.Store = (*MemoryStore)(nil)
