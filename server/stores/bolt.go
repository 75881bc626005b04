package stores

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mscno/collab/server/engine"
	"github.com/mscno/collab/server/model"
	"go.etcd.io/bbolt"
)

var (
	settingsBucket                = []byte("settings")
	projectsBucket                = []byte("projects")
	organizationsBucket           = []byte("organizations")
	membersBucket                 = []byte("organization_members")
	projectApplicationsBucket     = []byte("project_applications")
	partnershipsBucket            = []byte("partnerships")
	partnershipPairsBucket        = []byte("partnership_pairs")
	joinRequestsBucket            = []byte("organization_join_requests")
	interestsBucket               = []byte("partnership_interests")
	partnershipApplicationsBucket = []byte("partnership_applications")
	notificationsBucket           = []byte("notifications")

	allBuckets = [][]byte{
		settingsBucket,
		projectsBucket,
		organizationsBucket,
		membersBucket,
		projectApplicationsBucket,
		partnershipsBucket,
		partnershipPairsBucket,
		joinRequestsBucket,
		interestsBucket,
		partnershipApplicationsBucket,
		notificationsBucket,
	}

	settingsKey = []byte("global")
)

// BoltStore keeps one bucket per entity with JSON values. Foreign-key lookups go
// through idx_* buckets and partnerships are also indexed by (project, partner)
// in partnership_pairs.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(db *bbolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		for _, ix := range allIndexes {
			if err := ix.ensure(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// OpenBoltStore opens (or creates) the database file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	s, err := NewBoltStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltStore) View(ctx context.Context, fn func(tx engine.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func (s *BoltStore) Update(ctx context.Context, fn func(tx engine.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

type boltTx struct {
	tx *bbolt.Tx
}

func boltGet[T any](tx *bbolt.Tx, bucket []byte, key string, notFound error) (T, error) {
	var v T
	data := tx.Bucket(bucket).Get([]byte(key))
	if data == nil {
		return v, notFound
	}
	err := json.Unmarshal(data, &v)
	return v, err
}

func boltPut(tx *bbolt.Tx, bucket []byte, key string, v any) error {
	if !tx.Writable() {
		return ErrReadOnly
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Bucket(bucket).Put([]byte(key), data)
}

// boltScan decodes every value of bucket whose key starts with prefix and keeps
// the ones keep accepts. An empty prefix scans the whole bucket.
func boltScan[T any](tx *bbolt.Tx, bucket []byte, prefix string, keep func(T) bool) ([]T, error) {
	var out []T
	p := []byte(prefix)
	c := tx.Bucket(bucket).Cursor()
	for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return nil, err
		}
		if keep == nil || keep(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (b *boltTx) Settings() (model.Settings, error) {
	s, err := boltGet[model.Settings](b.tx, settingsBucket, string(settingsKey), errNoSettings)
	if errors.Is(err, errNoSettings) {
		return model.Settings{}, nil
	}
	return s, err
}

var errNoSettings = errors.New("no settings stored")

func (b *boltTx) PutSettings(s model.Settings) error {
	return boltPut(b.tx, settingsBucket, string(settingsKey), s)
}

func (b *boltTx) Project(id string) (model.Project, error) {
	return boltGet[model.Project](b.tx, projectsBucket, id, engine.ErrProjectNotFound)
}

func (b *boltTx) PutProject(p model.Project) error {
	return boltPutIndexed(b.tx, projectsBucket, p.ID, p, projectsByStatus)
}

func (b *boltTx) ProjectsByStatus(status model.ProjectStatus) ([]model.Project, error) {
	return projectsByStatus.lookup(b.tx, string(status))
}

func (b *boltTx) Organization(id string) (model.Organization, error) {
	return boltGet[model.Organization](b.tx, organizationsBucket, id, engine.ErrOrganizationNotFound)
}

func (b *boltTx) PutOrganization(o model.Organization) error {
	return boltPutIndexed(b.tx, organizationsBucket, o.ID, o, organizationsByStatus)
}

func (b *boltTx) OrganizationsByStatus(status model.OrganizationStatus) ([]model.Organization, error) {
	return organizationsByStatus.lookup(b.tx, string(status))
}

func (b *boltTx) Member(orgID string, userID model.UserID) (model.OrganizationMember, error) {
	return boltGet[model.OrganizationMember](b.tx, membersBucket, memberKey(orgID, userID), engine.ErrMemberNotFound)
}

func (b *boltTx) PutMember(m model.OrganizationMember) error {
	return boltPut(b.tx, membersBucket, memberKey(m.OrganizationID, m.UserID), m)
}

func (b *boltTx) MembersByOrganization(orgID string) ([]model.OrganizationMember, error) {
	return boltScan[model.OrganizationMember](b.tx, membersBucket, orgID+":", nil)
}

func (b *boltTx) ProjectApplication(id string) (model.ProjectApplication, error) {
	return boltGet[model.ProjectApplication](b.tx, projectApplicationsBucket, id, engine.ErrApplicationNotFound)
}

func (b *boltTx) PutProjectApplication(a model.ProjectApplication) error {
	return boltPutIndexed(b.tx, projectApplicationsBucket, a.ID, a, applicationsByUser, applicationsByProject)
}

func (b *boltTx) ProjectApplicationsByUser(userID model.UserID) ([]model.ProjectApplication, error) {
	return applicationsByUser.lookup(b.tx, string(userID))
}

func (b *boltTx) ProjectApplicationsByProject(projectID string) ([]model.ProjectApplication, error) {
	return applicationsByProject.lookup(b.tx, projectID)
}

func (b *boltTx) Partnership(id string) (model.Partnership, error) {
	return boltGet[model.Partnership](b.tx, partnershipsBucket, id, engine.ErrPartnershipNotFound)
}

func (b *boltTx) PartnershipByPair(projectID string, partnerID model.UserID) (model.Partnership, error) {
	id := b.tx.Bucket(partnershipPairsBucket).Get([]byte(pairKey(projectID, partnerID)))
	if id == nil {
		return model.Partnership{}, engine.ErrPartnershipNotFound
	}
	return b.Partnership(string(id))
}

func (b *boltTx) PutPartnership(p model.Partnership) error {
	if err := boltPutIndexed(b.tx, partnershipsBucket, p.ID, p, partnershipsByPartner, partnershipsByProject); err != nil {
		return err
	}
	pairs := b.tx.Bucket(partnershipPairsBucket)
	key := []byte(pairKey(p.ProjectID, p.PartnerID))
	if pairs.Get(key) != nil {
		return nil
	}
	return pairs.Put(key, []byte(p.ID))
}

func (b *boltTx) PartnershipsByPartner(partnerID model.UserID) ([]model.Partnership, error) {
	return partnershipsByPartner.lookup(b.tx, string(partnerID))
}

func (b *boltTx) PartnershipsByProject(projectID string) ([]model.Partnership, error) {
	return partnershipsByProject.lookup(b.tx, projectID)
}

func (b *boltTx) JoinRequest(id string) (model.OrganizationJoinRequest, error) {
	return boltGet[model.OrganizationJoinRequest](b.tx, joinRequestsBucket, id, engine.ErrJoinRequestNotFound)
}

func (b *boltTx) PutJoinRequest(r model.OrganizationJoinRequest) error {
	return boltPutIndexed(b.tx, joinRequestsBucket, r.ID, r, joinRequestsByOrganization)
}

func (b *boltTx) JoinRequestsByOrganization(orgID string) ([]model.OrganizationJoinRequest, error) {
	return joinRequestsByOrganization.lookup(b.tx, orgID)
}

func (b *boltTx) Interest(id string) (model.PartnershipInterest, error) {
	return boltGet[model.PartnershipInterest](b.tx, interestsBucket, id, engine.ErrInterestNotFound)
}

func (b *boltTx) PutInterest(i model.PartnershipInterest) error {
	return boltPutIndexed(b.tx, interestsBucket, i.ID, i, interestsByOrganization)
}

func (b *boltTx) InterestsByOrganization(orgID string) ([]model.PartnershipInterest, error) {
	return interestsByOrganization.lookup(b.tx, orgID)
}

func (b *boltTx) PartnershipApplication(id string) (model.PartnershipApplication, error) {
	return boltGet[model.PartnershipApplication](b.tx, partnershipApplicationsBucket, id, engine.ErrPartnershipApplicationNotFound)
}

func (b *boltTx) PutPartnershipApplication(a model.PartnershipApplication) error {
	return boltPutIndexed(b.tx, partnershipApplicationsBucket, a.ID, a, partnershipApplicationsByOrganization)
}

func (b *boltTx) PartnershipApplicationsByOrganization(orgID string) ([]model.PartnershipApplication, error) {
	return partnershipApplicationsByOrganization.lookup(b.tx, orgID)
}

func (b *boltTx) PutNotification(n model.Notification) error {
	return boltPutIndexed(b.tx, notificationsBucket, n.ID, n, notificationsByUser)
}

func (b *boltTx) NotificationsByUser(userID model.UserID) ([]model.Notification, error) {
	return notificationsByUser.lookup(b.tx, string(userID))
}

var _ engine.Store = (*BoltStore)(nil)
