package form

// File is an uploaded multipart part that carried a filename. Its Data is owned by the file
// and stays valid after the request is done.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (f File) Size() int {
	return len(f.Data)
}

// Fields maps text part names to their values. A repeated name keeps the last value.
type Fields map[string]string

// Files maps part names to uploaded files. A repeated name keeps the last file.
type Files map[string]File
