// Package stores holds the persistence backends of the engine: in process, bbolt
// on local disk and Google Cloud Datastore.
package stores

import (
	"errors"
	"fmt"

	"github.com/mscno/collab/server/model"
)

var ErrReadOnly = errors.New("write in read-only transaction")

// memberKey is the composite key of an organization membership: "orgID:userID".
func memberKey(orgID string, userID model.UserID) string {
	return fmt.Sprintf("%s:%s", orgID, userID)
}

// pairKey is the composite key of a (project, partner) pair: "projectID:partnerID".
func pairKey(projectID string, partnerID model.UserID) string {
	return fmt.Sprintf("%s:%s", projectID, partnerID)
}
