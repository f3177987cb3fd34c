package bookscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	importEPUBMessageType     = "epub.books.import_epub"
	exportEPUBMessageType     = "epub.books.export_epub"
	collateBookMessageType    = "epub.books.collate_book"
	ingestMarkdownMessageType = "epub.books.ingest_markdown"
)

// ImportEPUBCommand adapts every package inside the EPUB at Path into a book
// model and stores the result in the archive.
type ImportEPUBCommand struct {
	// Path selects the EPUB file to read.
	Path string `json:"path"`
}

// Type implements command.Message.
func (ImportEPUBCommand) Type() string { return importEPUBMessageType }

// Validate ensures the source path is present before handlers execute.
func (cmd ImportEPUBCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(requireText("epub.books.import_epub.path_required", "path is required"))),
	)
}

// ExportEPUBCommand loads a stored book by ident-hash and writes it back out
// as an EPUB file at Out. When Publisher is set the export carries
// publication metadata.
type ExportEPUBCommand struct {
	// IdentHash identifies the stored book, e.g. "id@version".
	IdentHash string `json:"ident_hash"`
	// Out is the destination EPUB path.
	Out string `json:"out"`
	// Publisher names the publication actor recorded in the OPF, optional.
	Publisher string `json:"publisher,omitempty"`
	// Message carries the publication message recorded alongside Publisher.
	Message string `json:"message,omitempty"`
}

// Type implements command.Message.
func (ExportEPUBCommand) Type() string { return exportEPUBMessageType }

// Validate ensures the book identity and destination are present.
func (cmd ExportEPUBCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.IdentHash, validation.Required, validation.By(requireText("epub.books.export_epub.ident_hash_required", "ident_hash is required"))),
		validation.Field(&cmd.Out, validation.Required, validation.By(requireText("epub.books.export_epub.out_required", "out is required"))),
	)
}

// CollateBookCommand loads a stored book, collates it into a single-page
// publication and writes the collated EPUB to Out.
type CollateBookCommand struct {
	// IdentHash identifies the stored book, e.g. "id@version".
	IdentHash string `json:"ident_hash"`
	// Out is the destination EPUB path for the collated book.
	Out string `json:"out"`
}

// Type implements command.Message.
func (CollateBookCommand) Type() string { return collateBookMessageType }

// Validate ensures the book identity and destination are present.
func (cmd CollateBookCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.IdentHash, validation.Required, validation.By(requireText("epub.books.collate_book.ident_hash_required", "ident_hash is required"))),
		validation.Field(&cmd.Out, validation.Required, validation.By(requireText("epub.books.collate_book.out_required", "out is required"))),
	)
}

// IngestMarkdownCommand assembles the markdown sources under Directory into a
// book and stores it in the archive under BookID.
type IngestMarkdownCommand struct {
	// Directory selects the source tree to ingest.
	Directory string `json:"directory"`
	// BookID becomes the binder id (and ident-hash together with the index
	// page version) of the stored book.
	BookID string `json:"book_id"`
}

// Type implements command.Message.
func (IngestMarkdownCommand) Type() string { return ingestMarkdownMessageType }

// Validate ensures the source directory and book identity are present.
func (cmd IngestMarkdownCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(requireText("epub.books.ingest_markdown.directory_required", "directory is required"))),
		validation.Field(&cmd.BookID, validation.Required, validation.By(requireText("epub.books.ingest_markdown.book_id_required", "book_id is required"))),
	)
}

func requireText(code, message string) func(value any) error {
	return func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
