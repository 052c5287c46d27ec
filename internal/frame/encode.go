package frame

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// base64LineWidth matches the wrap column shairport-sync uses for payloads.
const base64LineWidth = 76

// Encode renders an item in the layout shairport-sync emits: the identifier
// and length sub-elements on one line, then the base64 payload on its own
// lines wrapped at 76 columns. Frames without a payload omit the data
// element entirely. Decode inverts Encode exactly.
func Encode(item Item) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<item><type>%s</type><code>%s</code><length>%d</length>",
		item.Type.Hex(), item.Code.Hex(), len(item.Data))
	if len(item.Data) > 0 {
		b.WriteString("\n<data encoding=\"base64\">\n")
		enc := base64.StdEncoding.EncodeToString(item.Data)
		for len(enc) > base64LineWidth {
			b.WriteString(enc[:base64LineWidth])
			b.WriteByte('\n')
			enc = enc[base64LineWidth:]
		}
		b.WriteString(enc)
		b.WriteString("</data>")
	}
	b.WriteString("</item>\n")
	return b.Bytes()
}
