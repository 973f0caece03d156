package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/samu777684/financial360/logging"
	"github.com/samu777684/financial360/models"
)

// AdminStatsHandler arma el tablero: cada agregado es independiente,
// así que se consultan en paralelo.
func AdminStatsHandler(c *gin.Context) {
	var stats models.Stats

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		n, err := models.CountUsers(ctx)
		stats.TotalUsuarios = n
		return err
	})
	g.Go(func() error {
		n, err := models.CountActiveMemberships(ctx)
		stats.MembresiasActivas = n
		return err
	})
	g.Go(func() error {
		total, count, err := models.SumApprovedRevenue(ctx)
		stats.IngresosCentavos = total
		stats.PagosAprobados = count
		return err
	})
	g.Go(func() error {
		generado, pendiente, pagado, pagadoMes, err := models.SumCommissionsByState(ctx)
		stats.ComisionesGeneradas = generado
		stats.ComisionesPendientes = pendiente
		stats.ComisionesPagadas = pagado
		stats.PagadasEsteMes = pagadoMes
		return err
	})
	g.Go(func() error {
		n, err := models.CountReferrers(ctx)
		stats.UsuariosConReferidos = n
		return err
	})
	g.Go(func() error {
		n, err := models.CountActivePlans(ctx)
		stats.PlanesActivos = n
		return err
	})

	if err := g.Wait(); err != nil {
		logging.Sugar().Errorw("stats aggregation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error interno del servidor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "estadisticas": stats})
}
