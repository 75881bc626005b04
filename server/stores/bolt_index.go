package stores

import (
	"bytes"
	"encoding/json"

	"github.com/mscno/collab/server/model"
	"go.etcd.io/bbolt"
)

// boltIndex maps a foreign key of the rows in source to their ids. Keys are
// "<fk>\x00<id>" and values are the row id, so a prefix seek on the foreign key
// yields every matching row without decoding the whole source bucket.
type boltIndex[T any] struct {
	bucket []byte
	source []byte
	key    func(T) string
}

type boltIndexer interface {
	ensure(tx *bbolt.Tx) error
}

var (
	projectsByStatus = boltIndex[model.Project]{
		bucket: []byte("idx_projects_status"),
		source: projectsBucket,
		key:    func(p model.Project) string { return string(p.Status) },
	}
	organizationsByStatus = boltIndex[model.Organization]{
		bucket: []byte("idx_organizations_status"),
		source: organizationsBucket,
		key:    func(o model.Organization) string { return string(o.Status) },
	}
	applicationsByUser = boltIndex[model.ProjectApplication]{
		bucket: []byte("idx_project_applications_user"),
		source: projectApplicationsBucket,
		key:    func(a model.ProjectApplication) string { return string(a.UserID) },
	}
	applicationsByProject = boltIndex[model.ProjectApplication]{
		bucket: []byte("idx_project_applications_project"),
		source: projectApplicationsBucket,
		key:    func(a model.ProjectApplication) string { return a.ProjectID },
	}
	partnershipsByPartner = boltIndex[model.Partnership]{
		bucket: []byte("idx_partnerships_partner"),
		source: partnershipsBucket,
		key:    func(p model.Partnership) string { return string(p.PartnerID) },
	}
	partnershipsByProject = boltIndex[model.Partnership]{
		bucket: []byte("idx_partnerships_project"),
		source: partnershipsBucket,
		key:    func(p model.Partnership) string { return p.ProjectID },
	}
	joinRequestsByOrganization = boltIndex[model.OrganizationJoinRequest]{
		bucket: []byte("idx_join_requests_organization"),
		source: joinRequestsBucket,
		key:    func(r model.OrganizationJoinRequest) string { return r.OrganizationID },
	}
	interestsByOrganization = boltIndex[model.PartnershipInterest]{
		bucket: []byte("idx_interests_organization"),
		source: interestsBucket,
		key:    func(i model.PartnershipInterest) string { return i.OrganizationID },
	}
	partnershipApplicationsByOrganization = boltIndex[model.PartnershipApplication]{
		bucket: []byte("idx_partnership_applications_organization"),
		source: partnershipApplicationsBucket,
		key:    func(a model.PartnershipApplication) string { return a.OrganizationID },
	}
	notificationsByUser = boltIndex[model.Notification]{
		bucket: []byte("idx_notifications_user"),
		source: notificationsBucket,
		key:    func(n model.Notification) string { return string(n.UserID) },
	}

	allIndexes = []boltIndexer{
		projectsByStatus,
		organizationsByStatus,
		applicationsByUser,
		applicationsByProject,
		partnershipsByPartner,
		partnershipsByProject,
		joinRequestsByOrganization,
		interestsByOrganization,
		partnershipApplicationsByOrganization,
		notificationsByUser,
	}
)

func indexPrefix(fk string) []byte {
	return append([]byte(fk), 0)
}

func indexKey(fk, id string) []byte {
	return append(indexPrefix(fk), id...)
}

// ensure creates the index bucket, filling it from source when it did not exist
// yet, so databases written before the index was added keep working.
func (ix boltIndex[T]) ensure(tx *bbolt.Tx) error {
	if tx.Bucket(ix.bucket) != nil {
		return nil
	}
	b, err := tx.CreateBucket(ix.bucket)
	if err != nil {
		return err
	}
	return tx.Bucket(ix.source).ForEach(func(k, v []byte) error {
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return err
		}
		id := string(k)
		return b.Put(indexKey(ix.key(item), id), []byte(id))
	})
}

// update moves the entry of id from old's key to v's key.
func (ix boltIndex[T]) update(tx *bbolt.Tx, id string, old *T, v T) error {
	b := tx.Bucket(ix.bucket)
	next := indexKey(ix.key(v), id)
	if old != nil {
		if prev := indexKey(ix.key(*old), id); !bytes.Equal(prev, next) {
			if err := b.Delete(prev); err != nil {
				return err
			}
		}
	}
	return b.Put(next, []byte(id))
}

func (ix boltIndex[T]) lookup(tx *bbolt.Tx, fk string) ([]T, error) {
	var out []T
	src := tx.Bucket(ix.source)
	prefix := indexPrefix(fk)
	c := tx.Bucket(ix.bucket).Cursor()
	for k, id := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, id = c.Next() {
		data := src.Get(id)
		if data == nil {
			continue
		}
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// boltPutIndexed writes v under id and keeps every index over bucket current.
func boltPutIndexed[T any](tx *bbolt.Tx, bucket []byte, id string, v T, indexes ...boltIndex[T]) error {
	if !tx.Writable() {
		return ErrReadOnly
	}
	var old *T
	if data := tx.Bucket(bucket).Get([]byte(id)); data != nil {
		var prev T
		if err := json.Unmarshal(data, &prev); err != nil {
			return err
		}
		old = &prev
	}
	if err := boltPut(tx, bucket, id, v); err != nil {
		return err
	}
	for _, ix := range indexes {
		if err := ix.update(tx, id, old, v); err != nil {
			return err
		}
	}
	return nil
}
