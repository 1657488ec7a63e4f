package csvutil

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/sagov/internal/domain/models"
)

func TestPreScanSubscribersCSV_ValidRows(t *testing.T) {
	csv := `discord_id,name
123456789012345678,Ann
223456789012345678, Bob `

	rows, htmlErr, err := PreScanSubscribersCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("PreScanSubscribersCSV() error = %v", err)
	}
	if htmlErr != "" {
		t.Fatalf("unexpected rejection: %s", htmlErr)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].Name != "Bob" || rows[1].Line != 3 {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestPreScanSubscribersCSV_NoHeaderWithBOM(t *testing.T) {
	csv := "\ufeff123456789012345678,Ann\n"

	rows, htmlErr, _ := PreScanSubscribersCSV(strings.NewReader(csv))
	if htmlErr != "" || len(rows) != 1 {
		t.Fatalf("rows=%v htmlErr=%s", rows, htmlErr)
	}
	if rows[0].DiscordID != "123456789012345678" {
		t.Errorf("BOM not stripped: %q", rows[0].DiscordID)
	}
}

func TestPreScanSubscribersCSV_HeaderWithBOM(t *testing.T) {
	csv := "\ufeffID Discord,Nom\n123456789012345678,Ann\n"

	rows, htmlErr, _ := PreScanSubscribersCSV(strings.NewReader(csv))
	if htmlErr != "" || len(rows) != 1 {
		t.Fatalf("rows=%v htmlErr=%s", rows, htmlErr)
	}
}

func TestPreScanSubscribersCSV_DuplicatesKeepFirst(t *testing.T) {
	csv := "123456789012345678,Ann\n123456789012345678,Ann again\n"

	rows, _, _ := PreScanSubscribersCSV(strings.NewReader(csv))
	if len(rows) != 1 || rows[0].Name != "Ann" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestPreScanSubscribersCSV_RejectsBadRows(t *testing.T) {
	csv := `123456789012345678,Ann
12345,Short
323456789012345678,
,
<b>423456789012345678</b>,Tag`

	rows, htmlErr, err := PreScanSubscribersCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("PreScanSubscribersCSV() error = %v", err)
	}
	if rows != nil {
		t.Errorf("a rejected file must return no rows, got %v", rows)
	}
	msg := string(htmlErr)
	for _, want := range []string{"ligne 2", "ligne 3", "nom manquant", "&lt;b&gt;"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q: %s", want, msg)
		}
	}
	if strings.Contains(msg, "ligne 4") {
		t.Error("blank rows should be ignored")
	}
}

func TestPreScanSubscribersCSV_TooManyRows(t *testing.T) {
	var b strings.Builder
	for i := 0; i <= MaxRows; i++ {
		fmt.Fprintf(&b, "%018d,n\n", 100000000000000000+i)
	}
	rows, htmlErr, _ := PreScanSubscribersCSV(strings.NewReader(b.String()))
	if rows != nil || htmlErr == "" {
		t.Errorf("expected the file to be refused")
	}
}

func TestPreScanSubscribersCSV_Empty(t *testing.T) {
	rows, htmlErr, err := PreScanSubscribersCSV(strings.NewReader(""))
	if err != nil || htmlErr != "" || len(rows) != 0 {
		t.Errorf("rows=%v htmlErr=%s err=%v", rows, htmlErr, err)
	}
}

func TestWriteSubscribersCSV_RoundTrips(t *testing.T) {
	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	var buf bytes.Buffer
	err := WriteSubscribersCSV(&buf, []models.NewsletterSubscriber{
		{DiscordID: "123456789012345678", Name: "Ann, the first", SubscribedAt: at},
	})
	if err != nil {
		t.Fatalf("WriteSubscribersCSV() error = %v", err)
	}
	want := "discord_id,name,subscribed_at\n123456789012345678,\"Ann, the first\",2024-02-03T04:05:06Z\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	rows, htmlErr, _ := PreScanSubscribersCSV(&buf)
	if htmlErr != "" || len(rows) != 1 || rows[0].Name != "Ann, the first" {
		t.Errorf("export should be importable: rows=%v htmlErr=%s", rows, htmlErr)
	}
}
