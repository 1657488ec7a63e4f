// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxPageContentSize is the maximum size for content editor submissions.
	MaxPageContentSize = 1 << 20 // 1 MB

	// MaxNewsletterFormSize is the maximum size for newsletter drafts.
	MaxNewsletterFormSize = 256 << 10 // 256 KB

	// MaxSmallFormSize covers login, subscription and the intranet tool forms.
	MaxSmallFormSize = 64 << 10 // 64 KB
)
