package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simonhull/kestrel/pkg/config"
	"github.com/simonhull/kestrel/pkg/pysrc"
)

func TestClassifyByPath(t *testing.T) {
	c := NewClassifier(config.Default().Roles)

	tests := []struct {
		path string
		want Role
	}{
		{"app/services/order_service.py", Service},
		{"app/models/order.py", Model},
		{"app/api/client/v1/orders.py", API},
		{"app/routes/health.py", API},
		{"app/schemas/order.py", Schema},
		{"app/utils/strings.py", Util},
		{"app/core/config.py", Util},
		{"scripts/seed.py", Default},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.path, nil), tt.path)
	}
}

func TestClassifyOutermostSegmentWins(t *testing.T) {
	c := NewClassifier(config.Default().Roles)

	// services is outermost even though models appears deeper
	assert.Equal(t, Service, c.Classify("app/services/models/order.py", nil))
	// api_helpers is not the api segment
	assert.Equal(t, Service, c.Classify("app/services/api_helpers/x.py", nil))
}

func TestClassifyFileNameNeverMatches(t *testing.T) {
	c := NewClassifier(config.Default().Roles)

	assert.Equal(t, Default, c.Classify("app/services.py", nil))
}

func TestClassifyCaseInsensitivePath(t *testing.T) {
	c := NewClassifier(config.Default().Roles)

	assert.Equal(t, Service, c.Classify("App/Services/Order.py", nil))
}

func TestClassifyByBaseClass(t *testing.T) {
	c := NewClassifier(config.Default().Roles)

	model := &pysrc.FeatureSet{BaseClasses: []string{"Base"}}
	assert.Equal(t, Model, c.Classify("app/misc/order.py", model))

	schema := &pysrc.FeatureSet{BaseClasses: []string{"BaseModel"}}
	assert.Equal(t, Schema, c.Classify("app/misc/order.py", schema))

	// table order decides when several rules match
	both := &pysrc.FeatureSet{BaseClasses: []string{"Base", "BaseModel"}}
	assert.Equal(t, Model, c.Classify("app/misc/order.py", both))
}

func TestClassifyPathBeatsBaseClass(t *testing.T) {
	c := NewClassifier(config.Default().Roles)

	features := &pysrc.FeatureSet{BaseClasses: []string{"BaseModel"}}
	assert.Equal(t, Service, c.Classify("app/services/order.py", features))
}

func TestClassifyDefault(t *testing.T) {
	c := NewClassifier(config.Default().Roles)

	assert.Equal(t, Default, c.Classify("main.py", nil))
	assert.Equal(t, Default, c.Classify("main.py", &pysrc.FeatureSet{}))
}
