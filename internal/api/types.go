package api

// Wire types for the cloud-dist service. Field names follow the service
// exactly; note that the repository-save endpoint uses camelCase keys while
// everything else uses snake_case.

// Entry is one row of a folder listing. An empty Ext marks a folder; there is
// no separate type tag. ID is the parent-relative numeric id the service
// assigns to entries it owns (0 is reserved for the root and is not a valid
// id for any other folder). RepositoryIdentity addresses the stored blob for
// files and is empty for folders.
type Entry struct {
	ID                 int64  `json:"id"`
	Identity           string `json:"identity"`
	RepositoryIdentity string `json:"repository_identity"`
	Name               string `json:"name"`
	Ext                string `json:"ext"`
	Path               string `json:"path"`
	Size               int64  `json:"size"`
	CreatedAt          string `json:"created_at"`
}

// IsFolder reports whether the entry is a folder.
func (e Entry) IsFolder() bool { return e.Ext == "" }

// DisplayName returns the name with extension for files.
func (e Entry) DisplayName() string { return e.Name + e.Ext }

type fileListRequest struct {
	Identity string `json:"identity,omitempty"`
	Page     int    `json:"page,omitempty"`
	Size     int    `json:"size,omitempty"`
}

type fileListReply struct {
	List  []Entry `json:"list"`
	Count int64   `json:"count"`
}

// FolderRef is one row of the folder-only listing endpoint. It carries no
// numeric id; callers resolve that from the parent's file listing.
type FolderRef struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
}

type folderListRequest struct {
	Identity string `json:"identity,omitempty"`
}

type folderListReply struct {
	List []FolderRef `json:"list"`
}

type folderCreateRequest struct {
	ParentID int64  `json:"parent_id"`
	Name     string `json:"name"`
}

type folderCreateReply struct {
	Identity string `json:"identity"`
}

type renameRequest struct {
	Identity string `json:"identity"`
	Name     string `json:"name"`
}

type moveRequest struct {
	Identity       string `json:"identity"`
	ParentIdentity string `json:"parent_identity"`
}

type deleteRequest struct {
	Identity string `json:"identity"`
}

// UploadResult identifies the stored blob after a transfer. Identity is the
// repository identity to pass to RegisterUpload, not a namespace identity.
type UploadResult struct {
	Identity string `json:"identity"`
	Ext      string `json:"ext"`
	Name     string `json:"name"`
}

type registerUploadRequest struct {
	ParentID           int64  `json:"parentId"`
	RepositoryIdentity string `json:"repositoryIdentity"`
	Ext                string `json:"ext"`
	Name               string `json:"name"`
}

// PrepareResult is the reply of the chunked-upload prepare call. A non-empty
// Identity means the blob already exists server-side and no transfer is
// needed. Parts lists already-uploaded parts when resuming.
type PrepareResult struct {
	Identity string       `json:"identity"`
	UploadID string       `json:"upload_id"`
	Key      string       `json:"key"`
	Parts    []UploadPart `json:"parts"`
}

// UploadPart identifies one completed chunk.
type UploadPart struct {
	PartNumber int    `json:"part_number"`
	Etag       string `json:"etag"`
}

type prepareRequest struct {
	Md5  string `json:"md5"`
	Name string `json:"name"`
	Ext  string `json:"ext"`
}

type chunkReply struct {
	Etag string `json:"etag"`
}

type completeRequest struct {
	Md5      string       `json:"md5"`
	Name     string       `json:"name"`
	Ext      string       `json:"ext"`
	Size     int64        `json:"size"`
	Key      string       `json:"key"`
	UploadID string       `json:"upload_id"`
	Parts    []UploadPart `json:"cos_objects"`
}

type completeReply struct {
	Identity string `json:"identity"`
}

type errorReply struct {
	Error string `json:"error"`
}
