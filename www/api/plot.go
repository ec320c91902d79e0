package api

import (
	"image/color"
	"log/slog"
	"net/http"

	"hacklab/platform/db"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// AdminScoreChart renders the top scorers as a PNG bar chart for the admin
// dashboard.
func AdminScoreChart(w http.ResponseWriter, r *http.Request) {
	users, err := db.GetTopUsers(10)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving scores"})
		return
	}

	p := plot.New()
	p.Title.Text = "Top Scores"
	p.Y.Label.Text = "Score"
	p.Y.Width = 2
	p.X.Width = 2
	p.BackgroundColor = color.White

	scores := make(plotter.Values, len(users))
	names := make([]string, len(users))
	for i, user := range users {
		scores[i] = float64(user.Score)
		names[i] = user.Username
	}

	bars, err := plotter.NewBarChart(scores, vg.Points(25))
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error rendering chart"})
		return
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = color.RGBA{R: 0x2b, G: 0x8a, B: 0x3e, A: 0xff}
	p.Add(bars)
	p.NominalX(names...)

	canvas := vgimg.PngCanvas{Canvas: vgimg.NewWith(
		vgimg.UseWH(25*vg.Centimeter, 12*vg.Centimeter),
		vgimg.UseBackgroundColor(color.White),
	)}
	p.Draw(draw.New(canvas))

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := canvas.WriteTo(w); err != nil {
		slog.Error("failed to write score chart", "error", err)
	}
}
