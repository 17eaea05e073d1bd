// Package hcl_adapter provides the HCL implementation of config.Loader.
//
// A project file looks like:
//
//	resource = "my-resource"
//	notifier = "rcon"
//
//	paths {
//	  manifest = "manifest.json"
//	  source   = "src"
//	}
//
//	watch {
//	  ignore = ["**/*.md"]
//	}
//
//	rcon {
//	  password = env.RCON_PWD
//	}
//
// Every attribute is optional. The process environment is available as the
// `env` map, after the .env file has been loaded.
package hcl_adapter
