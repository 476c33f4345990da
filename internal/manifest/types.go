package manifest

// FileName is the manifest file every extension ships at its root.
const FileName = "plugin.json"

// Plugin is the parsed content of plugin.json.
type Plugin struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Main           string   `json:"main,omitempty"`
	Version        string   `json:"version"`
	Readme         string   `json:"readme,omitempty"`
	Icon           string   `json:"icon,omitempty"`
	Files          []string `json:"files,omitempty"`
	MinVersionCode int      `json:"minVersionCode,omitempty"`
	Price          float64  `json:"price,omitempty"`
	License        string   `json:"license,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	Author         *Author  `json:"author,omitempty"`
}

// Author identifies the plugin author.
type Author struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	GitHub string `json:"github,omitempty"`
}
