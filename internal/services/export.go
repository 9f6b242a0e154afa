package services

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"warungpos/internal/domain"
)

// CSV header kept verbatim from the legacy export format.
const csvHeader = `ID Transaksi,Tanggal,Waktu,Nama Produk,Jumlah,Harga Satuan,Subtotal`

const (
	csvDateLayout = "02-01-2006"
	csvTimeLayout = "15:04:05"
)

// ExportCSV writes one row per (transaction, line item) pair. Every
// field is quoted; embedded quotes are doubled per RFC 4180. Subtotals
// are recomputed per line, not read from the stored total.
func ExportCSV(w io.Writer, transactions []domain.Transaction) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(csvHeader + "\n"); err != nil {
		return err
	}
	for _, t := range transactions {
		date := t.CreatedAt.Format(csvDateLayout)
		tod := t.CreatedAt.Format(csvTimeLayout)
		for _, it := range t.Items {
			row := []string{
				t.ID,
				date,
				tod,
				it.ProductName,
				strconv.Itoa(it.Quantity),
				formatAmount(it.Price),
				formatAmount(it.Price * float64(it.Quantity)),
			}
			for i, f := range row {
				row[i] = quote(f)
			}
			if _, err := bw.WriteString(strings.Join(row, ",") + "\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
