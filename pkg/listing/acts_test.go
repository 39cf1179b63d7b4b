package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawscraper/pkg/utils"
)

func TestParseActRows(t *testing.T) {
	page := []byte(`
		<html><body><table class="contenttable">
		<tr><td>Cap 63</td><td><a href="/kl/acts/penal-code">Penal Code</a></td>
			<td>1930</td><td><a href="/pdfs/penal-code.pdf">PDF</a></td></tr>
		<tr><td>Chapter 80</td><td><a href="/kl/acts/evidence-act">Evidence Act</a></td><td></td><td></td></tr>
		<tr><td colspan="4">No link in this row</td></tr>
		</table></body></html>`)

	rows, err := newTestParser().ParseActRows(page, "https://kenyalaw.org/kl/")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Penal Code", rows[0].Title)
	assert.Equal(t, "https://kenyalaw.org/kl/acts/penal-code", rows[0].URL)
	assert.Equal(t, "63", rows[0].ChapterNumber)
	require.NotNil(t, rows[0].YearEnacted)
	assert.Equal(t, 1930, *rows[0].YearEnacted)
	assert.Equal(t, "https://kenyalaw.org/pdfs/penal-code.pdf", rows[0].PDFURL)

	assert.Equal(t, "80", rows[1].ChapterNumber)
	assert.Nil(t, rows[1].YearEnacted)
	assert.Empty(t, rows[1].PDFURL)
}

func TestParseActRowsLinkFallback(t *testing.T) {
	page := []byte(`<html><body><ul class="vert-two">
		<li><a href="/kl/acts/data-protection">Data Protection Act Cap 411C</a></li>
		</ul></body></html>`)

	rows, err := newTestParser().ParseActRows(page, "https://kenyalaw.org/kl/")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Data Protection Act Cap 411C", rows[0].Title)
	assert.Equal(t, "https://kenyalaw.org/kl/acts/data-protection", rows[0].URL)
	assert.Equal(t, "411C", rows[0].ChapterNumber)
	assert.Nil(t, rows[0].YearEnacted)
}

func TestParseActRowsUnparseable(t *testing.T) {
	_, err := newTestParser().ParseActRows([]byte("<html><body><p>nothing</p></body></html>"), "https://kenyalaw.org/kl/")
	assert.ErrorIs(t, err, utils.ErrListingUnparseable)
}
