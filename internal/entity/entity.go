package entity

// Course is one entry of the account-level course listing. The listing may
// contain null entries for courses the token cannot access; callers skip those.
type Course struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
}

// Folder is a node of a course's folder tree. A folder without a parent is the
// course root and maps to the course directory itself.
type Folder struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	FoldersURL     string `json:"folders_url"`
	FilesURL       string `json:"files_url"`
	ParentFolderID *int64 `json:"parent_folder_id"`
}

// File is one download task. FilePath is resolved during the crawl and is not
// part of the wire format. Size is the remote-reported size; the authoritative
// size for progress comes from a HEAD request at download time.
type File struct {
	ID       int64  `json:"id"`
	FolderID int64  `json:"folder_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
	FilePath string `json:"-"`
}
