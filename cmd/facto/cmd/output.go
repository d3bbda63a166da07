package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/facto-ocr/facto/internal/models"
)

// writeOutput renders payload in the requested format to file or stdout.
func writeOutput(out io.Writer, payload any, format, file string, pretty bool) error {
	if file != "" {
		f, err := os.Create(file)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer func() { _ = enc.Close() }()
		return enc.Encode(payload)
	case "text":
		return writeText(out, payload)
	default:
		enc := json.NewEncoder(out)
		if pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(payload)
	}
}

func writeText(out io.Writer, payload any) error {
	switch v := payload.(type) {
	case *models.Document:
		return writeDocumentText(out, v)
	case []*models.Document:
		for i, doc := range v {
			if i > 0 {
				if _, err := fmt.Fprintln(out, strings.Repeat("-", 60)); err != nil {
					return err
				}
			}
			if doc == nil {
				if _, err := fmt.Fprintf(out, "Document %d: extraction failed\n", i); err != nil {
					return err
				}
				continue
			}
			if err := writeDocumentText(out, doc); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintf(out, "%v\n", payload)
		return err
	}
}

func writeDocumentText(out io.Writer, doc *models.Document) error {
	w := &errWriter{out: out}

	if doc.Contact.SupplierName.Value != "" {
		w.printf("Supplier: %s\n", doc.Contact.SupplierName.Value)
	}
	if doc.Contact.Address.Value != "" {
		w.printf("Address:  %s\n", doc.Contact.Address.Value)
	}
	if doc.Contact.Phone.Value != "" {
		w.printf("Phone:    %s\n", doc.Contact.Phone.Value)
	}
	if doc.Contact.Email.Value != "" {
		w.printf("Email:    %s\n", doc.Contact.Email.Value)
	}
	for k, v := range doc.Entities.Identifiers {
		w.printf("%s: %s\n", strings.ToUpper(k), v)
	}

	w.printf("\nLines (%d):\n", len(doc.Lines))
	for _, l := range doc.Lines {
		ref := l.Reference
		if ref == "" {
			ref = "-"
		}
		total := "-"
		if t, ok := l.EffectiveTotal(); ok {
			total = fmt.Sprintf("%.2f", t)
		}
		flag := ""
		if l.IsCorrupted {
			flag = " [corrupted: " + string(l.CorruptionReason) + "]"
		} else if l.NeedsReview {
			flag = " [review]"
		}
		w.printf("  %-16s %-40s %10s%s\n", ref, l.Designation, total, flag)
	}

	w.printf("\nComputed total: %.2f\n", doc.Validation.ComputedTotal)
	if doc.Validation.ReportedTotal != nil {
		w.printf("Reported total: %.2f\n", *doc.Validation.ReportedTotal)
	}
	if doc.Validation.IsValid {
		w.printf("Validation: OK\n")
	} else {
		w.printf("Validation: MISMATCH (difference %.2f)\n", doc.Validation.Difference)
		for _, s := range doc.Validation.Suggestions {
			w.printf("  - %s\n", s.Message)
		}
	}
	return w.err
}

// errWriter folds write errors so the formatting code stays flat.
type errWriter struct {
	out io.Writer
	err error
}

func (w *errWriter) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.out, format, args...)
}
