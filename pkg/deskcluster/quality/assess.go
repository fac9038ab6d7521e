package quality

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Assessment is a verbal grade for each headline metric.
type Assessment struct {
	Silhouette string `json:"silhouette"`
	Separation string `json:"separation"`
	Balance    string `json:"balance"`
	Gini       string `json:"gini"`
}

// Ratio returns BCSS/WCSS, 0 when WCSS is 0.
func (q Quality) Ratio() float64 {
	if q.WCSS == 0 {
		return 0
	}
	return q.BCSS / q.WCSS
}

// Assess grades q.
func (q Quality) Assess() Assessment {
	return Assessment{
		Silhouette: SilhouetteGrade(q.Silhouette),
		Separation: SeparationGrade(q.Ratio()),
		Balance:    BalanceGrade(q.BalanceIndex),
		Gini:       GiniGrade(q.Gini),
	}
}

func SilhouetteGrade(score float64) string {
	switch {
	case score > 0.7:
		return "excellent"
	case score > 0.5:
		return "good"
	case score > 0.25:
		return "fair"
	}
	return "poor"
}

func SeparationGrade(ratio float64) string {
	switch {
	case ratio > 3:
		return "high separability"
	case ratio > 1:
		return "moderate separability"
	}
	return "weak separability"
}

func BalanceGrade(index float64) string {
	switch {
	case index < 0.1:
		return "perfectly balanced"
	case index < 0.3:
		return "well balanced"
	case index < 0.5:
		return "moderate imbalance"
	}
	return "strong imbalance"
}

func GiniGrade(gini float64) string {
	switch {
	case gini < 0.2:
		return "high uniformity"
	case gini < 0.4:
		return "good uniformity"
	case gini < 0.6:
		return "medium uniformity"
	}
	return "high inequality"
}

// WriteReport renders q as an aligned text report.
func WriteReport(w io.Writer, q Quality) error {
	a := q.Assess()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Clusters:\t%d\t\n", q.Clusters)
	fmt.Fprintf(tw, "Samples:\t%d\t\n", q.Samples)
	fmt.Fprintf(tw, "Silhouette score:\t%.4f\t%s\n", q.Silhouette, a.Silhouette)
	fmt.Fprintf(tw, "WCSS:\t%.2f\t\n", q.WCSS)
	fmt.Fprintf(tw, "BCSS:\t%.2f\t\n", q.BCSS)
	fmt.Fprintf(tw, "BCSS/WCSS ratio:\t%.2f\t%s\n", q.Ratio(), a.Separation)
	fmt.Fprintf(tw, "Calinski-Harabasz:\t%.4f\t\n", q.CalinskiHarabasz)
	fmt.Fprintf(tw, "Davies-Bouldin:\t%.4f\t\n", q.DaviesBouldin)
	fmt.Fprintf(tw, "Balance index:\t%.4f\t%s\n", q.BalanceIndex, a.Balance)
	fmt.Fprintf(tw, "Gini coefficient:\t%.4f\t%s\n", q.Gini, a.Gini)
	return tw.Flush()
}
