package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/fxbuild/internal/config"
	"github.com/vk/fxbuild/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	env map[string]string
}

// NewLoader creates a new HCL project file loader. env is exposed to the
// file as the `env` variable; nil means the process environment.
func NewLoader(env map[string]string) *Loader {
	return &Loader{env: env}
}

// fileRoot is the struct used to decode a project file.
type fileRoot struct {
	Resource string         `hcl:"resource,optional"`
	Notifier string         `hcl:"notifier,optional"`
	Paths    *pathsBlock    `hcl:"paths,block"`
	Watch    *watchBlock    `hcl:"watch,block"`
	RCON     *rconBlock     `hcl:"rcon,block"`
	SocketIO *socketIOBlock `hcl:"socketio,block"`
	Publish  *publishBlock  `hcl:"publish,block"`
}

type pathsBlock struct {
	Manifest   string `hcl:"manifest,optional"`
	Source     string `hcl:"source,optional"`
	Output     string `hcl:"output,optional"`
	Descriptor string `hcl:"descriptor,optional"`
}

type watchBlock struct {
	Include []string `hcl:"include,optional"`
	Ignore  []string `hcl:"ignore,optional"`
}

type rconBlock struct {
	Address  string `hcl:"address,optional"`
	Password string `hcl:"password,optional"`
}

type socketIOBlock struct {
	URL       string `hcl:"url"`
	Namespace string `hcl:"namespace,optional"`
	Password  string `hcl:"password,optional"`
}

type publishBlock struct {
	Endpoint  string `hcl:"endpoint"`
	Bucket    string `hcl:"bucket"`
	Prefix    string `hcl:"prefix,optional"`
	AccessKey string `hcl:"access_key,optional"`
	SecretKey string `hcl:"secret_key,optional"`
	Secure    *bool  `hcl:"secure,optional"`
}

// Load parses the project file at path and merges it over config.Defaults.
func (l *Loader) Load(ctx context.Context, path string) (*config.Project, error) {
	logger := ctxlog.FromContext(ctx)
	project := config.Defaults()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("No project file found, using defaults.", "path", path)
			return project, nil
		}
		return nil, fmt.Errorf("error accessing project file %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse project file %s: %w", path, diags)
	}

	env := l.env
	if env == nil {
		env = config.Environ()
	}
	evalCtx, err := newEvalContext(env)
	if err != nil {
		return nil, err
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project file %s: %w", path, diags)
	}

	merge(project, &root)
	logger.Debug("Project file loaded.", "path", path, "notifier", project.Notifier, "publish", project.Publish != nil)
	return project, nil
}

// merge copies every value set in the file over the defaults.
func merge(p *config.Project, root *fileRoot) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&p.Resource, root.Resource)
	set(&p.Notifier, root.Notifier)

	if b := root.Paths; b != nil {
		set(&p.Paths.Manifest, b.Manifest)
		set(&p.Paths.Source, b.Source)
		set(&p.Paths.Output, b.Output)
		set(&p.Paths.Descriptor, b.Descriptor)
	}
	if b := root.Watch; b != nil {
		p.Watch.Include = b.Include
		p.Watch.Ignore = b.Ignore
	}
	if b := root.RCON; b != nil {
		set(&p.RCON.Address, b.Address)
		set(&p.RCON.Password, b.Password)
	}
	if b := root.SocketIO; b != nil {
		set(&p.SocketIO.URL, b.URL)
		set(&p.SocketIO.Namespace, b.Namespace)
		set(&p.SocketIO.Password, b.Password)
	}
	if b := root.Publish; b != nil {
		p.Publish = &config.Publish{
			Endpoint:  b.Endpoint,
			Bucket:    b.Bucket,
			Prefix:    b.Prefix,
			AccessKey: b.AccessKey,
			SecretKey: b.SecretKey,
			Secure:    true,
		}
		if b.Secure != nil {
			p.Publish.Secure = *b.Secure
		}
	}
}

var _ config.Loader = (*Loader)(nil)
