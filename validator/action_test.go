package validator

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/shacl-go/rdf"
)

const personShapes = `@prefix sh: <http://www.w3.org/ns/shacl#> .
<http://example.org/PersonShape> a sh:NodeShape ;
    sh:targetClass <http://www.w3.org/2006/time#Instant> ;
    sh:property [ sh:path <http://example.org/name> ; sh:minCount 1 ] .
`

func TestActionLifecycle(t *testing.T) {
	a := NewAction()
	assert.Nil(t, a.Validator())
	_, err := a.Run(context.Background(), correctData)
	assert.ErrorIs(t, err, ErrNotConfigured)

	require.Error(t, a.Configure(context.Background(), Configuration{}))
	assert.Nil(t, a.Validator())

	require.NoError(t, a.Configure(context.Background(), Configuration{"shape": instantShapes}))
	first := a.Validator()
	require.NotNil(t, first)
	out, err := a.Run(context.Background(), correctData)
	require.NoError(t, err)
	assert.True(t, conformsIn(t, out, rdf.FormatTurtle))

	err = a.Configure(context.Background(), Configuration{"shape": instantShapes, "output-format": "yaml"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Same(t, first, a.Validator())

	require.NoError(t, a.Configure(context.Background(), Configuration{"shape": personShapes, "output-format": "nt"}))
	assert.NotSame(t, first, a.Validator())
	out, err = a.Run(context.Background(), correctData)
	require.NoError(t, err)
	assert.False(t, conformsIn(t, out, rdf.FormatNTriples))
}

func TestActionReconfigureDuringRuns(t *testing.T) {
	a := NewAction()
	require.NoError(t, a.Configure(context.Background(), Configuration{"shape": instantShapes}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := a.Run(context.Background(), wrongData)
			assert.NoError(t, err)
			assert.NotEmpty(t, out)
		}()
	}
	for i := 0; i < 4; i++ {
		assert.NoError(t, a.Configure(context.Background(), Configuration{"shape": instantShapes}))
	}
	wg.Wait()
}
