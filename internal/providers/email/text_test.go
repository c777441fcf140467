package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	in := `<html><head><style>p{color:red}</style></head><body>
<h1>Summer   sale</h1><p>Save 20% on <strong>all</strong> cables &amp; chargers.</p><br/>
<script>alert(1)</script><p>See you soon</p></body></html>`

	assert.Equal(t, "Summer sale\nSave 20% on all cables & chargers.\n\nSee you soon", PlainText(in))
	assert.Equal(t, "", PlainText("<p> </p>"))
}
