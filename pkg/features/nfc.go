package features

// NFC tag writer commands.
const (
	NFCReadModes   = "ReadModes"
	NFCCommandWiFi = "NFCWiFi"
	NFCCommandCard = "NFCVCard"
	NFCCommandURL  = "NFCURL"
	NFCCommandText = "GenericText"
)

// NDEF WiFi encryption types.
var NFCWiFiEncryption = map[string]int{
	"NONE": 1,
	"WEP":  2,
	"TKIP": 4,
	"AES":  8,
}

// NDEF WiFi authentication types.
var NFCWiFiAuthentication = map[string]int{
	"NONE":    1,
	"WPAPSK":  2,
	"SHARED":  4,
	"WPA":     8,
	"WPA2":    16,
	"WPA2PSK": 32,
}

// NDEF URI prefixes.
var NFCURLPrefix = map[string]int{
	"http://www.":  1,
	"https://www.": 2,
}

// NFCCommand is the JSON request understood by the NFC tag writer.
type NFCCommand struct {
	Command     string    `json:"Command,omitempty"`
	GenericText string    `json:"GenericText,omitempty"`
	WiFi        *NFCWiFi  `json:"NFCWiFi,omitempty"`
	VCard       *NFCVCard `json:"NFCVCard,omitempty"`
	URL         string    `json:"NFCURL,omitempty"`
}

// NFCWiFi is a WiFi credential record.
type NFCWiFi struct {
	NetworkSSID        string `json:"NetworkSSID"`
	NetworkKey         string `json:"NetworkKey"`
	AuthenticationType int    `json:"AuthenticationType"`
	EncryptionType     int    `json:"EncryptionType"`
}

// NFCVCard is a contact card record.
type NFCVCard struct {
	Name          string `json:"Name,omitempty"`
	FormattedName string `json:"FormattedName,omitempty"`
	Title         string `json:"Title,omitempty"`
	Org           string `json:"Org,omitempty"`
	HomeAddress   string `json:"HomeAddress,omitempty"`
	WorkAddress   string `json:"WorkAddress,omitempty"`
	Address       string `json:"Address,omitempty"`
	HomeTel       string `json:"HomeTel,omitempty"`
	WorkTel       string `json:"WorkTel,omitempty"`
	CellTel       string `json:"CellTel,omitempty"`
	HomeEmail     string `json:"HomeEmail,omitempty"`
	WorkEmail     string `json:"WorkEmail,omitempty"`
	URL           string `json:"Url,omitempty"`
}

// NFCModes is the tag writer's answer to a ReadModes command.
type NFCModes struct {
	Answer         string   `json:"Answer,omitempty"`
	ModesSupported []string `json:"ModesSupported,omitempty"`
}
