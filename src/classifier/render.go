// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package classifier

import (
	"fmt"
	"strings"
	"time"
)

// HostPlaceholder stands in for the hostname in messages when none is known.
const HostPlaceholder = "<unknown>"

const dateLayout = "Monday, 02 Jan 2006, 15:04:05 MST"

const (
	msgHeader        = "The security certificate of this connection is not trusted by this computer.\n\n"
	msgSelfSigned    = "The certificate is not trusted because it was signed by its own issuer (self-signed)."
	msgUntrustedRoot = "The certificate is not trusted because the issuer certificate is unknown.\n" +
		"The server might not send the appropriate intermediate certificates.\n" +
		"An additional root certificate might have to be imported."
	msgUnknown = "The certificate is not trusted for an unknown reason."
	msgFooter  = "You may choose to trust this connection at your own risk or cancel the operation.\n"
)

func render(d *Detail) string {
	var b strings.Builder
	b.WriteString(msgHeader)

	for i, kind := range d.Kinds {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch kind {
		case Expired:
			fmt.Fprintf(&b, "The certificate expired on %s. The current time is %s.",
				formatTime(d.NotAfter), formatTime(d.Now))
		case WrongHost:
			b.WriteString("The certificate is only valid for the following names:\n")
			if len(d.Names) == 0 {
				b.WriteString("  (none)")
			} else {
				b.WriteString("  " + strings.Join(d.Names, ", "))
			}
		case SelfSigned:
			b.WriteString(msgSelfSigned)
		case UntrustedRoot:
			b.WriteString(msgUntrustedRoot)
		default:
			b.WriteString(msgUnknown)
		}
	}

	host := d.Hostname
	if host == "" {
		host = HostPlaceholder
	}
	fmt.Fprintf(&b, "\n\nError code:\t%s\nServer:\t%s\n\n", d.Code, host)
	b.WriteString(msgFooter)
	return b.String()
}

func formatTime(t time.Time) string { return t.UTC().Format(dateLayout) }
