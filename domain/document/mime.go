package document

// MimeType is a supported input document format.
type MimeType string

// Supported input MIME types.
const (
	MimePDF  MimeType = "application/pdf"
	MimeDOCX MimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePPTX MimeType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimeXLSX MimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeJPEG MimeType = "image/jpeg"
	MimePNG  MimeType = "image/png"
)

// officeFormats maps convertible office formats to the file extension the
// conversion service expects as a source format tag.
var officeFormats = map[MimeType]string{
	MimeDOCX: "docx",
	MimePPTX: "pptx",
	MimeXLSX: "xlsx",
}

// IsSupported reports whether m is in the supported enumeration.
func (m MimeType) IsSupported() bool {
	switch m {
	case MimePDF, MimeDOCX, MimePPTX, MimeXLSX, MimeJPEG, MimePNG:
		return true
	}
	return false
}

// IsImage reports whether m is a raster image format.
func (m MimeType) IsImage() bool {
	return m == MimeJPEG || m == MimePNG
}

// ConvertFormat returns the source format tag for office formats that need
// PDF conversion, and false for everything else.
func (m MimeType) ConvertFormat() (string, bool) {
	format, ok := officeFormats[m]
	return format, ok
}
