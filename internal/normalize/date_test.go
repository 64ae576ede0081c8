package normalize

import "testing"

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "labeled date wins over other dates",
			in:   "Pedido 01/01/2025\nFecha Factura: 15/03/2024\nVencimiento 30/06/2025",
			want: "2024-03-15",
		},
		{
			name: "most recent generic date wins",
			in:   "Fecha pedido 02/01/2025 ... Fecha emision 21/02/2025",
			want: "2025-02-21",
		},
		{
			name: "dash separated",
			in:   "emitida el 05-11-2024",
			want: "2024-11-05",
		},
		{
			name: "dot separated",
			in:   "fecha 7.6.2023",
			want: "2023-06-07",
		},
		{
			name: "textual spanish month",
			in:   "Utebo, a 21 de Junio de 2025",
			want: "2025-06-21",
		},
		{
			name: "accented month",
			in:   "3 de Setiembre de 2024",
			want: "2024-09-03",
		},
		{
			name: "year before cutoff rejected",
			in:   "01/02/2015",
			want: "",
		},
		{
			name: "month out of range rejected",
			in:   "15/13/2024",
			want: "",
		},
		{
			name: "impossible day rejected",
			in:   "31/02/2024",
			want: "",
		},
		{
			name: "no date",
			in:   "TOTAL FACTURA 121,00",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDate(tt.in); got != tt.want {
				t.Errorf("ParseDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSortKey(t *testing.T) {
	if SortKey("") <= SortKey("2025-01-01") {
		t.Error("empty dates must sort after real dates")
	}
	if SortKey("2024-01-01") >= SortKey("2024-06-01") {
		t.Error("ISO dates must sort chronologically")
	}
}
