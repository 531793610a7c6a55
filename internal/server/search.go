package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/technopolitica/loadouts/internal/domain"
)

func NewSearchRouter() *chi.Mux {
	searchRouter := chi.NewRouter()
	searchRouter.Get("/", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		limit, _ := strconv.Atoi(query.Get("limit"))
		results, err := GetRepository(r).Search(r.Context(), domain.SearchParams{
			Query:        query.Get("q"),
			Types:        domain.NormalizeSearchTypes(query.Get("types")),
			CategorySlug: query.Get("category"),
			LimitPerType: limit,
		})
		if err != nil {
			failure(w, r, err, domain.ApiErrorSearchFailed, "Search failed.")
			return
		}
		respond(w, r, http.StatusOK, results)
	})
	return searchRouter
}

func NewProductsRouter() *chi.Mux {
	productsRouter := chi.NewRouter()
	productsRouter.Get("/", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		limit, _ := strconv.Atoi(query.Get("limit"))
		products, err := GetRepository(r).SearchProducts(r.Context(), query.Get("q"), limit)
		if err != nil {
			failure(w, r, err, domain.ApiErrorFetchFailed, "Unable to load products.")
			return
		}
		respond(w, r, http.StatusOK, products)
	})
	return productsRouter
}

func NewCategoriesRouter() *chi.Mux {
	categoriesRouter := chi.NewRouter()
	categoriesRouter.Get("/", func(w http.ResponseWriter, r *http.Request) {
		categories, err := GetRepository(r).ActiveCategories(r.Context())
		if err != nil {
			failure(w, r, err, domain.ApiErrorFetchFailed, "Unable to load categories.")
			return
		}
		respond(w, r, http.StatusOK, categories)
	})
	categoriesRouter.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		category, err := GetRepository(r).CategoryWithLoadouts(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			failure(w, r, err, domain.ApiErrorFetchFailed, "Unable to load category.")
			return
		}
		respond(w, r, http.StatusOK, category)
	})
	return categoriesRouter
}
