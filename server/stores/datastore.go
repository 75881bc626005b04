package stores

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/datastore"
	"github.com/mscno/collab/server/engine"
	"github.com/mscno/collab/server/model"
)

const (
	marketplaceKind            = "Marketplace"
	settingsKind               = "Settings"
	projectKind                = "Project"
	organizationKind           = "Organization"
	memberKind                 = "OrganizationMember"
	projectApplicationKind     = "ProjectApplication"
	partnershipKind            = "Partnership"
	joinRequestKind            = "OrganizationJoinRequest"
	interestKind               = "PartnershipInterest"
	partnershipApplicationKind = "PartnershipApplication"
	notificationKind           = "Notification"
)

// DatastoreStore keeps every entity under a single ancestor so that foreign-key
// queries can run inside transactions. Update uses RunInTransaction, which re-runs
// fn on contention.
type DatastoreStore struct {
	client *datastore.Client
	logger *slog.Logger
	root   *datastore.Key
}

func NewDatastoreStore(logger *slog.Logger, client *datastore.Client) *DatastoreStore {
	return &DatastoreStore{
		client: client,
		logger: logger,
		root:   datastore.NameKey(marketplaceKind, "default", nil),
	}
}

func (s *DatastoreStore) View(ctx context.Context, fn func(tx engine.Tx) error) error {
	_, err := s.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		return fn(&datastoreTx{ctx: ctx, client: s.client, tx: tx, root: s.root})
	}, datastore.ReadOnly)
	return err
}

func (s *DatastoreStore) Update(ctx context.Context, fn func(tx engine.Tx) error) error {
	attempt := 0
	_, err := s.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		attempt++
		if attempt > 1 {
			s.logger.DebugContext(ctx, "retrying datastore transaction", "attempt", attempt)
		}
		return fn(&datastoreTx{ctx: ctx, client: s.client, tx: tx, root: s.root, writable: true})
	})
	return err
}

func (s *DatastoreStore) Close() error {
	return s.client.Close()
}

type datastoreTx struct {
	ctx      context.Context
	client   *datastore.Client
	tx       *datastore.Transaction
	root     *datastore.Key
	writable bool
}

func (d *datastoreTx) key(kind, name string) *datastore.Key {
	return datastore.NameKey(kind, name, d.root)
}

func dsGet[T any](d *datastoreTx, kind, name string, notFound error) (T, error) {
	var v T
	err := d.tx.Get(d.key(kind, name), &v)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return v, notFound
	}
	if err != nil {
		return v, fmt.Errorf("get %s %s: %w", kind, name, err)
	}
	return v, nil
}

func dsPut[T any](d *datastoreTx, kind, name string, v T) error {
	if !d.writable {
		return ErrReadOnly
	}
	if _, err := d.tx.Put(d.key(kind, name), &v); err != nil {
		return fmt.Errorf("put %s %s: %w", kind, name, err)
	}
	return nil
}

// dsQuery runs an ancestor query inside the transaction with equality filters given
// as field/value pairs.
func dsQuery[T any](d *datastoreTx, kind string, filters ...any) ([]T, error) {
	q := datastore.NewQuery(kind).Ancestor(d.root).Transaction(d.tx)
	for i := 0; i+1 < len(filters); i += 2 {
		q = q.FilterField(filters[i].(string), "=", filters[i+1])
	}
	var out []T
	if _, err := d.client.GetAll(d.ctx, q, &out); err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	return out, nil
}

func (d *datastoreTx) Settings() (model.Settings, error) {
	s, err := dsGet[model.Settings](d, settingsKind, "global", errNoSettings)
	if errors.Is(err, errNoSettings) {
		return model.Settings{}, nil
	}
	return s, err
}

func (d *datastoreTx) PutSettings(s model.Settings) error {
	return dsPut(d, settingsKind, "global", s)
}

func (d *datastoreTx) Project(id string) (model.Project, error) {
	return dsGet[model.Project](d, projectKind, id, engine.ErrProjectNotFound)
}

func (d *datastoreTx) PutProject(p model.Project) error {
	return dsPut(d, projectKind, p.ID, p)
}

func (d *datastoreTx) ProjectsByStatus(status model.ProjectStatus) ([]model.Project, error) {
	return dsQuery[model.Project](d, projectKind, "Status", string(status))
}

func (d *datastoreTx) Organization(id string) (model.Organization, error) {
	return dsGet[model.Organization](d, organizationKind, id, engine.ErrOrganizationNotFound)
}

func (d *datastoreTx) PutOrganization(o model.Organization) error {
	return dsPut(d, organizationKind, o.ID, o)
}

func (d *datastoreTx) OrganizationsByStatus(status model.OrganizationStatus) ([]model.Organization, error) {
	return dsQuery[model.Organization](d, organizationKind, "Status", string(status))
}

func (d *datastoreTx) Member(orgID string, userID model.UserID) (model.OrganizationMember, error) {
	return dsGet[model.OrganizationMember](d, memberKind, memberKey(orgID, userID), engine.ErrMemberNotFound)
}

func (d *datastoreTx) PutMember(m model.OrganizationMember) error {
	return dsPut(d, memberKind, memberKey(m.OrganizationID, m.UserID), m)
}

func (d *datastoreTx) MembersByOrganization(orgID string) ([]model.OrganizationMember, error) {
	return dsQuery[model.OrganizationMember](d, memberKind, "OrganizationID", orgID)
}

func (d *datastoreTx) ProjectApplication(id string) (model.ProjectApplication, error) {
	return dsGet[model.ProjectApplication](d, projectApplicationKind, id, engine.ErrApplicationNotFound)
}

func (d *datastoreTx) PutProjectApplication(a model.ProjectApplication) error {
	return dsPut(d, projectApplicationKind, a.ID, a)
}

func (d *datastoreTx) ProjectApplicationsByUser(userID model.UserID) ([]model.ProjectApplication, error) {
	return dsQuery[model.ProjectApplication](d, projectApplicationKind, "UserID", string(userID))
}

func (d *datastoreTx) ProjectApplicationsByProject(projectID string) ([]model.ProjectApplication, error) {
	return dsQuery[model.ProjectApplication](d, projectApplicationKind, "ProjectID", projectID)
}

func (d *datastoreTx) Partnership(id string) (model.Partnership, error) {
	return dsGet[model.Partnership](d, partnershipKind, id, engine.ErrPartnershipNotFound)
}

func (d *datastoreTx) PartnershipByPair(projectID string, partnerID model.UserID) (model.Partnership, error) {
	rows, err := dsQuery[model.Partnership](d, partnershipKind, "ProjectID", projectID, "PartnerID", string(partnerID))
	if err != nil {
		return model.Partnership{}, err
	}
	if len(rows) == 0 {
		return model.Partnership{}, engine.ErrPartnershipNotFound
	}
	return rows[0], nil
}

func (d *datastoreTx) PutPartnership(p model.Partnership) error {
	return dsPut(d, partnershipKind, p.ID, p)
}

func (d *datastoreTx) PartnershipsByPartner(partnerID model.UserID) ([]model.Partnership, error) {
	return dsQuery[model.Partnership](d, partnershipKind, "PartnerID", string(partnerID))
}

func (d *datastoreTx) PartnershipsByProject(projectID string) ([]model.Partnership, error) {
	return dsQuery[model.Partnership](d, partnershipKind, "ProjectID", projectID)
}

func (d *datastoreTx) JoinRequest(id string) (model.OrganizationJoinRequest, error) {
	return dsGet[model.OrganizationJoinRequest](d, joinRequestKind, id, engine.ErrJoinRequestNotFound)
}

func (d *datastoreTx) PutJoinRequest(r model.OrganizationJoinRequest) error {
	return dsPut(d, joinRequestKind, r.ID, r)
}

func (d *datastoreTx) JoinRequestsByOrganization(orgID string) ([]model.OrganizationJoinRequest, error) {
	return dsQuery[model.OrganizationJoinRequest](d, joinRequestKind, "OrganizationID", orgID)
}

func (d *datastoreTx) Interest(id string) (model.PartnershipInterest, error) {
	return dsGet[model.PartnershipInterest](d, interestKind, id, engine.ErrInterestNotFound)
}

func (d *datastoreTx) PutInterest(i model.PartnershipInterest) error {
	return dsPut(d, interestKind, i.ID, i)
}

func (d *datastoreTx) InterestsByOrganization(orgID string) ([]model.PartnershipInterest, error) {
	return dsQuery[model.PartnershipInterest](d, interestKind, "OrganizationID", orgID)
}

func (d *datastoreTx) PartnershipApplication(id string) (model.PartnershipApplication, error) {
	return dsGet[model.PartnershipApplication](d, partnershipApplicationKind, id, engine.ErrPartnershipApplicationNotFound)
}

func (d *datastoreTx) PutPartnershipApplication(a model.PartnershipApplication) error {
	return dsPut(d, partnershipApplicationKind, a.ID, a)
}

func (d *datastoreTx) PartnershipApplicationsByOrganization(orgID string) ([]model.PartnershipApplication, error) {
	return dsQuery[model.PartnershipApplication](d, partnershipApplicationKind, "OrganizationID", orgID)
}

func (d *datastoreTx) PutNotification(n model.Notification) error {
	return dsPut(d, notificationKind, n.ID, n)
}

func (d *datastoreTx) NotificationsByUser(userID model.UserID) ([]model.Notification, error) {
	return dsQuery[model.Notification](d, notificationKind, "UserID", string(userID))
}

var _ engine.Store = (*DatastoreStore)(nil)
