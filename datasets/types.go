package datasets

import (
	"github.com/Keksclan/goAcornStash/dataset"
	"github.com/Keksclan/goAcornStash/internal/wire"
)

// PutMode selects how Put applies its record.
type PutMode string

const (
	// ModeUpsert inserts the record or replaces an existing one. Default.
	ModeUpsert PutMode = "upsert"
	// ModeInsert fails with AlreadyExists when the id is taken.
	ModeInsert PutMode = "insert"
	// ModeUpdate fails with NotFound when the id is absent.
	ModeUpdate PutMode = "update"
)

// ListRequest asks for the current contents of a dataset.
type ListRequest struct {
	Dataset string `json:"dataset"`
}

// ListResponse carries the dataset's records and whether they were served
// from a live cached copy.
type ListResponse struct {
	Records   []dataset.Record `json:"records"`
	FromCache bool             `json:"from_cache"`
}

// RefreshRequest forces a refetch of the dataset from its origin.
type RefreshRequest struct {
	Dataset string `json:"dataset"`
}

// RefreshResponse carries the freshly fetched records.
type RefreshResponse struct {
	Records []dataset.Record `json:"records"`
}

// PutRequest writes a record into a dataset.
type PutRequest struct {
	Dataset string         `json:"dataset"`
	Record  dataset.Record `json:"record"`
	Mode    PutMode        `json:"mode,omitempty"`
}

// PutResponse carries the collection after the write.
type PutResponse struct {
	Records []dataset.Record `json:"records"`
}

// DeleteRequest removes a record from a dataset by id.
type DeleteRequest struct {
	Dataset string `json:"dataset"`
	ID      string `json:"id"`
}

// DeleteResponse carries the collection after the removal.
type DeleteResponse struct {
	Records []dataset.Record `json:"records"`
}

func (*ListRequest) StashMessage()     {}
func (*ListResponse) StashMessage()    {}
func (*RefreshRequest) StashMessage()  {}
func (*RefreshResponse) StashMessage() {}
func (*PutRequest) StashMessage()      {}
func (*PutResponse) StashMessage()     {}
func (*DeleteRequest) StashMessage()   {}
func (*DeleteResponse) StashMessage()  {}

var _ wire.Message = (*ListRequest)(nil)
