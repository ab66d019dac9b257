package configuration

type Configuration struct {
	HttpAddr          string `usage:"HTTP address"`
	Dump              string `usage:"media library dump file, read at start and written at stop"`
	Scan              string `usage:"music folder scanned into the media library at start"`
	Schema            string `usage:"YAML schema of an extra database served next to the media library"`
	ApiKey            string `usage:"API key required in X-Api-Key, empty disables authentication"`
	ApiSecret         string `usage:"API secret required in X-Api-Secret"`
	EnableCompression bool   `usage:"gzip responses"`
	Version           bool   `usage:"show version and exit"`
	ShowBanner        bool   `usage:"show big banner"`
	ShowConfig        bool   `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr:          "127.0.0.1:8080",
		Dump:              "data/library.jsonl",
		Scan:              "",
		Schema:            "",
		ApiKey:            "",
		ApiSecret:         "",
		EnableCompression: true,
		Version:           false,
		ShowBanner:        true,
		ShowConfig:        false,
	}
}
