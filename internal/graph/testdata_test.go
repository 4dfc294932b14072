package graph

import "github.com/matsen/citegraph/internal/dataset"

// sampleRecords is a small dataset used across tests:
//
//	P1 (2018, 50 cites) by A1, A2; cites P2 and an unknown paper X9
//	P2 (2020, 5 cites)  by A1
//	P3 (2015, 120 cites) by A3; cites P1
func sampleRecords() []dataset.Paper {
	return []dataset.Paper{
		{
			PaperID: "P1", Title: "Deep Residual Learning", Year: 2018,
			CitationCount: 50, ReferenceCount: 2,
			Datasets: []string{"ImageNet", "CIFAR-10"},
			Authors: []dataset.Author{
				{AuthorID: "A1", Name: "Kaiming He", Affiliations: []string{"MSR"}},
				{AuthorID: "A2", Name: "Xiangyu Zhang"},
			},
			References: []string{"P2", "X9"},
		},
		{
			PaperID: "P2", Title: "Vision Transformers", Year: 2020,
			CitationCount: 5,
			Authors: []dataset.Author{
				{AuthorID: "A1", Name: "K. He (dup name ignored)", Affiliations: []string{"FAIR"}},
			},
		},
		{
			PaperID: "P3", Title: "Gradient Boosting", Year: 2015,
			CitationCount: 120, Abstract: "Trees all the way down.",
			Authors: []dataset.Author{
				{AuthorID: "A3", Name: "Jerome Friedman"},
			},
			References: []string{"P1"},
		},
	}
}
