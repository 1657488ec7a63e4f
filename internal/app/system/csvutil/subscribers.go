// internal/app/system/csvutil/subscribers.go
package csvutil

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/domain/models"
)

// SubscriberCSVRow is the normalized row produced by PreScanSubscribersCSV.
type SubscriberCSVRow struct {
	Line      int
	DiscordID string
	Name      string
}

// PreScanSubscribersCSV reads "discord id, name" rows from r, skips a header
// if present and validates every row. It returns either the rows, or an
// HTML message describing the first few bad lines. Ids repeated inside the
// file keep their first row only. Nothing is written; callers run it before
// any insert so a bad file changes nothing.
func PreScanSubscribersCSV(r io.Reader) (rows []SubscriberCSVRow, htmlErr template.HTML, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	type rowErr struct {
		Line      int
		DiscordID string
		Reason    string
	}
	var errs []rowErr
	seen := map[string]bool{}

	for line := 1; ; line++ {
		rec, e := reader.Read()
		if e == io.EOF {
			break
		}
		if e != nil {
			return nil, template.HTML(template.HTMLEscapeString(e.Error())), nil
		}
		if line == 1 && len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			if isHeader(rec) {
				continue
			}
		}

		var row SubscriberCSVRow
		row.Line = line
		if len(rec) > 0 {
			row.DiscordID = strings.TrimSpace(rec[0])
		}
		if len(rec) > 1 {
			row.Name = strings.TrimSpace(rec[1])
		}
		if row.DiscordID == "" && row.Name == "" {
			continue
		}

		switch {
		case !inputval.IsValidDiscordID(row.DiscordID):
			errs = append(errs, rowErr{line, row.DiscordID, "ID Discord invalide (17 à 20 chiffres)"})
			continue
		case row.Name == "":
			errs = append(errs, rowErr{line, row.DiscordID, "nom manquant"})
			continue
		case len([]rune(row.Name)) > 80:
			errs = append(errs, rowErr{line, row.DiscordID, "nom trop long (80 caractères maximum)"})
			continue
		}
		if seen[row.DiscordID] {
			continue
		}
		seen[row.DiscordID] = true

		rows = append(rows, row)
		if len(rows) > MaxRows {
			msg := fmt.Sprintf("Fichier refusé : %d lignes maximum.", MaxRows)
			return nil, template.HTML(template.HTMLEscapeString(msg)), nil
		}
	}

	if len(errs) > 0 {
		var b strings.Builder
		b.WriteString("Fichier refusé : certaines lignes sont invalides.<br>")
		b.WriteString("Chaque ligne doit contenir un ID Discord puis un nom.<br>")
		limit := min(len(errs), 5)
		for _, e := range errs[:limit] {
			id := e.DiscordID
			if id == "" {
				id = "(vide)"
			}
			b.WriteString(template.HTMLEscapeString(fmt.Sprintf("• ligne %d | %s → %s", e.Line, id, e.Reason)))
			b.WriteString("<br>")
		}
		if len(errs) > limit {
			b.WriteString(template.HTMLEscapeString(fmt.Sprintf("… et %d autre(s).", len(errs)-limit)))
		}
		return nil, template.HTML(b.String()), nil
	}
	return rows, "", nil
}

func isHeader(rec []string) bool {
	first := strings.ToLower(strings.TrimSpace(rec[0]))
	switch first {
	case "discord_id", "discord id", "id discord", "id":
		return true
	}
	return false
}

// WriteSubscribersCSV writes subscribers with a header row, in list order.
func WriteSubscribersCSV(w io.Writer, subs []models.NewsletterSubscriber) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"discord_id", "name", "subscribed_at"}); err != nil {
		return err
	}
	for _, s := range subs {
		if err := cw.Write([]string{s.DiscordID, s.Name, s.SubscribedAt.UTC().Format("2006-01-02T15:04:05Z")}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
