package config

// Notifier kinds.
const (
	NotifierRCON     = "rcon"
	NotifierSocketIO = "socketio"
)

// DefaultFile is the project file looked up in the resource root.
const DefaultFile = "fxbuild.hcl"

// Project is the unified representation of a resource's build settings.
type Project struct {
	// Resource overrides the resource name used in "ensure" commands.
	Resource string
	Notifier string
	Paths    Paths
	Watch    Watch
	RCON     RCON
	SocketIO SocketIO
	// Publish is nil unless bundles should be uploaded after a production build.
	Publish *Publish
}

// Paths are relative to the resource root.
type Paths struct {
	Manifest   string
	Source     string
	Output     string
	Descriptor string
}

// Watch filters source tree events.
type Watch struct {
	Include []string
	Ignore  []string
}

// RCON addresses the host's remote console.
type RCON struct {
	Address  string
	Password string
}

// SocketIO addresses a socket.io development bridge.
type SocketIO struct {
	URL       string
	Namespace string
	Password  string
}

// Publish addresses S3-compatible storage for release bundles.
type Publish struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Secure    bool
}

// Defaults returns the configuration used when no project file exists.
func Defaults() *Project {
	return &Project{
		Notifier: NotifierRCON,
		Paths: Paths{
			Manifest:   "manifest.json",
			Source:     "src",
			Output:     "dist",
			Descriptor: "fxmanifest.lua",
		},
		RCON: RCON{Address: "127.0.0.1:30120"},
		SocketIO: SocketIO{
			Namespace: "/",
		},
	}
}
