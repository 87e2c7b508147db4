package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedCSV = `layer_id,layer_name,name,friendly_name,theme,data_unit,dtype,description,is_key,is_required,default_value,aggregation,commit_sha
rs_context_huc12,Riverscapes Context,hucname,Watershed Name,admin,,TEXT,Name of the watershed,false,true,,FIRST,abc123
rs_context_huc12,Riverscapes Context,stream_length_km,Stream Length,hydrology,kilometer,REAL,Total stream length,false,false,,SUM,abc123
`

func TestCSVRecords(t *testing.T) {
	records, err := readCSVRecords(strings.NewReader(feedCSV))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "rs_context_huc12", records[0].LayerID)
	assert.Equal(t, "hucname", records[0].Name)
	assert.Equal(t, "Watershed Name", records[0].FriendlyName)
	assert.Equal(t, "true", records[0].IsRequired)
	assert.Equal(t, "kilometer", records[1].DataUnit)
	assert.Equal(t, "SUM", records[1].Aggregation)
}

func TestCSVRecordsUnknownHeadersIgnored(t *testing.T) {
	feed := "layer_id,name,dtype,aggregation,brand_new_feed_column\nlyr,col,TEXT,FIRST,whatever\n"
	records, err := readCSVRecords(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "col", records[0].Name)
}

func TestCSVRecordsMissingRequiredHeader(t *testing.T) {
	_, err := readCSVRecords(strings.NewReader("name,dtype\ncol,TEXT\n"))
	assert.Error(t, err)

	_, err = readCSVRecords(strings.NewReader("layer_id,dtype\nlyr,TEXT\n"))
	assert.Error(t, err)
}

func TestCSVFeedLoadsIntoRegistry(t *testing.T) {
	records, err := readCSVRecords(strings.NewReader(feedCSV))
	require.NoError(t, err)

	reg, err := Load(SliceSource(records))
	require.NoError(t, err)

	fm, err := reg.Lookup("rs_context_huc12", "stream_length_km")
	require.NoError(t, err)
	assert.Equal(t, AggSum, fm.Aggregation)
	assert.Equal(t, "Total stream length", fm.Description)
}
