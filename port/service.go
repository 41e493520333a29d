package port

import "sort"

// Unknown is the service name for ports missing from the table.
const Unknown = "Unknown"

var services = map[uint16]string{
	21:   "FTP",
	22:   "SSH",
	23:   "Telnet",
	25:   "SMTP",
	53:   "DNS",
	80:   "HTTP",
	110:  "POP3",
	143:  "IMAP",
	443:  "HTTPS",
	445:  "SMB",
	554:  "RTSP",
	3306: "MySQL",
	3389: "RDP",
	5432: "PostgreSQL",
	5900: "VNC",
	8000: "HTTP-Alt",
	8080: "HTTP-Proxy",
	8443: "HTTPS-Alt",
	8888: "HTTP-Alt",
}

// Classify returns the well-known service name for p, or Unknown.
func Classify(p uint16) string {
	if name, ok := services[p]; ok {
		return name
	}
	return Unknown
}

// CommonPorts returns every port in the service table, ascending.
func CommonPorts() []uint16 {
	out := make([]uint16, 0, len(services))
	for p := range services {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
