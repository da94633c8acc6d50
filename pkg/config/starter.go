package config

import (
	"fmt"
	"os"
)

// starterYAML is the kestrel.yml scaffold written by `kestrel init`. It
// spells out the built-in defaults so projects can tune them in place;
// TestStarterMatchesDefaults keeps it in sync with Default().
const starterYAML = `# kestrel.yml - pre-write gate configuration

# Composite-score threshold per file role (0-100). A proposed write whose
# best duplicate match reaches its role's threshold is flagged.
thresholds:
  service: 70
  model: 60
  api: 50
  util: 75
  schema: 50
  default: 65

# Similarity dimension weights. Must sum to 1.0.
weights:
  class_name: 0.25
  method_names: 0.20
  imports: 0.15
  decorators: 0.10
  base_classes: 0.15
  function_names: 0.15

# Resource limits for one analysis run.
limits:
  max_file_size: 5242880 # bytes
  search_timeout: 5s
  max_candidates: 30

# Role classification: path segments first, then base-class signals.
roles:
  paths:
    service: [services]
    model: [models]
    api: [api, routes, route]
    schema: [schemas]
    util: [utils, core]
  bases:
    - base: Base
      role: model
    - base: DeclarativeBase
      role: model
    - base: SQLModel
      role: model
    - base: Document
      role: model
    - base: BaseModel
      role: schema
    - base: Schema
      role: schema
  search:
    service: [app/services]
    model: [app/models]
    api: [app/api]
    schema: [app/schemas]
    util: [app/core, app/utils]
    default: [app]

# Dependency layers, outermost first. Inner layers must not import outer ones.
layers:
  - name: api
    title: API
    imports: [app.api]
    paths: [app/api]
  - name: service
    title: Service
    imports: [app.services]
    paths: [app/services]
  - name: core
    title: Core/Common
    imports: [app.core, app.common, app.services.common]
    paths: [app/core, app/common, app/services/common]
  - name: db
    title: DB/Models
    imports: [app.db, app.models]
    paths: [app/db, app/models]

# Shared resources and their one designated construction site.
singletons:
  - kind: Redis
    pattern: 'Redis\([^)]*host'
    file: app/services/common/redis.py
  - kind: Database Engine
    pattern: 'create_async_engine\('
    file: app/db/base.py

# The only module allowed to read environment variables directly.
settings_file: app/core/config.py

# Directory names skipped everywhere: candidate search and hook gating.
exclude: [venv, env, .venv, __pycache__, site-packages, .claude, migrations, node_modules, .git, tests]
`

// WriteStarter writes the starter kestrel.yml to path. It refuses to
// overwrite an existing file unless force is set.
func WriteStarter(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	return os.WriteFile(path, []byte(starterYAML), 0644)
}
