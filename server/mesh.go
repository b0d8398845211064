package server

import (
	"hypersurface/core"
	"hypersurface/provider"
	"hypersurface/rendering"
)

// MeshData is the websocket and /api/mesh payload.
type MeshData struct {
	Type       string                  `json:"type"`
	Phase      string                  `json:"phase"`
	Mode       string                  `json:"mode"`
	Version    uint64                  `json:"version"`
	Seq        uint64                  `json:"seq"`
	Resolution int                     `json:"resolution"`
	Vertices   [][3]float64            `json:"vertices"`
	Normals    [][3]float64            `json:"normals"`
	Colors     []string                `json:"colors"`
	Heights    []float64               `json:"heights"`
	Indices    []uint32                `json:"indices"`
	Points     []PointData             `json:"points"`
	Statistics provider.StatisticsData `json:"statistics"`
}

type PointData struct {
	Position [3]float64 `json:"position"`
	Color    string     `json:"color"`
	Size     float64    `json:"size"`
	Height   float64    `json:"height"`
	Error    float64    `json:"error"`
	Beat     int        `json:"beat"`
}

// ErrorMessage is sent to a single client whose request was rejected.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func vec(v core.Vector3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// createMeshData flattens the surface's current geometry. While loading only
// the phase and mode are set.
func createMeshData(surface *rendering.Surface, set *core.SampleSet) MeshData {
	view := surface.View()
	data := MeshData{
		Type:  "surface_update",
		Phase: view.Phase.String(),
		Mode:  view.Mode.String(),
	}

	grid := surface.Grid()
	if grid == nil {
		return data
	}

	data.Version = grid.SourceVersion
	data.Resolution = grid.Resolution
	data.Vertices = make([][3]float64, len(grid.Nodes))
	data.Normals = make([][3]float64, len(grid.Nodes))
	data.Colors = make([]string, len(grid.Nodes))
	data.Heights = make([]float64, len(grid.Nodes))
	for i, n := range grid.Nodes {
		data.Vertices[i] = vec(n.Position)
		data.Normals[i] = vec(n.Normal)
		data.Colors[i] = n.Color.Hex()
		data.Heights[i] = n.Height
	}
	data.Indices = grid.Indices

	cloud := surface.Cloud()
	data.Points = make([]PointData, len(cloud.Points))
	for i, p := range cloud.Points {
		data.Points[i] = PointData{
			Position: vec(p.Position),
			Color:    p.Color.Hex(),
			Size:     p.Size,
			Height:   p.Height,
			Error:    p.Error,
			Beat:     p.Beat,
		}
	}

	stats := core.ComputeStatistics(set)
	data.Statistics = provider.StatisticsData{
		MeanHeight:     stats.MeanHeight,
		HeightVariance: stats.HeightVariance,
		MeanError:      stats.MeanError,
		MaxError:       stats.MaxError,
		MinError:       stats.MinError,
	}
	return data
}
