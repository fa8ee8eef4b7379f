package loyalty

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMobile(t *testing.T) {
	assert.Equal(t, "+919876543210", NormalizeMobile(" +91 98765-43210 "))
	assert.Equal(t, "9876543210", NormalizeMobile("(98765) 43210"))
	assert.Equal(t, "98765", NormalizeMobile("98+765"))
	assert.Equal(t, "", NormalizeMobile("  "))
}

func TestLinkFamilyMemberCreatesHousehold(t *testing.T) {
	f := newFixture(t)
	head := f.addUser(f.clinic.ID, "Meera", models.RolePatient, "9000000001")
	member := f.addUser(f.clinic.ID, "Kabir", models.RolePatient, "9000000002")

	res, err := f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, head.ID, "90000 00002")
	require.NoError(t, err)
	requireSuccess(t, res)

	require.Len(t, res.UpdatedData.FamilyGroups, 1)
	group := res.UpdatedData.FamilyGroups[0]
	assert.Equal(t, head.ID, group.HeadUserID)
	assert.Equal(t, f.clinic.ID, group.ClinicID)

	require.NotNil(t, f.user(head.ID).FamilyGroupID)
	assert.Equal(t, group.ID, *f.user(head.ID).FamilyGroupID)
	require.NotNil(t, f.user(member.ID).FamilyGroupID)
	assert.Equal(t, group.ID, *f.user(member.ID).FamilyGroupID)

	resolved, err := f.engine.EffectiveHead(f.ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, head.ID, resolved.ID)

	again, err := f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, head.ID, "9000000002")
	require.NoError(t, err)
	requireSuccess(t, again)
	assert.Len(t, again.UpdatedData.FamilyGroups, 1)
}

func TestLinkFamilyMemberMovesBetweenHouseholds(t *testing.T) {
	f := newFixture(t)
	first := f.addUser(f.clinic.ID, "Meera", models.RolePatient, "9000000001")
	second := f.addUser(f.clinic.ID, "Arjun", models.RolePatient, "9000000003")
	member := f.addUser(f.clinic.ID, "Kabir", models.RolePatient, "9000000002")

	requireSuccess(t, mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, first.ID, "9000000002")))
	res := mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, second.ID, "9000000002"))
	requireSuccess(t, res)

	secondGroup, err := f.store.GetFamilyGroupByHead(f.ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, secondGroup.ID, *f.user(member.ID).FamilyGroupID)

	firstGroup, err := f.store.GetFamilyGroupByHead(f.ctx, first.ID)
	require.NoError(t, err)
	members, err := f.store.ListFamilyMembers(f.ctx, firstGroup.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, first.ID, members[0].ID)
}

func TestLinkFamilyMemberRejections(t *testing.T) {
	f := newFixture(t)
	head := f.addUser(f.clinic.ID, "Meera", models.RolePatient, "9000000001")
	other := f.addClinic("elsewhere")
	f.addUser(other.ID, "Ravi", models.RolePatient, "9000000009")

	requireFailure(t, mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, head.ID, "9000000009")), CodeNotFound)
	requireFailure(t, mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, head.ID, "9000000001")), CodeValidation)
	requireFailure(t, mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, head.ID, "")), CodeValidation)
	requireFailure(t, mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, uuid.New(), "9000000001")), CodeAuth)
	requireFailure(t, mustResult(f.engine.LinkFamilyMember(f.ctx, other.ID, head.ID, "9000000009")), CodeAuth)

	assert.Empty(t, f.state().FamilyGroups)
	assert.Nil(t, f.user(head.ID).FamilyGroupID)
}

func TestLinkFamilyMemberHeadWithMembersCannotMove(t *testing.T) {
	f := newFixture(t)
	a := f.addUser(f.clinic.ID, "Meera", models.RolePatient, "9000000001")
	b := f.addUser(f.clinic.ID, "Arjun", models.RolePatient, "9000000002")
	f.addUser(f.clinic.ID, "Kabir", models.RolePatient, "9000000003")

	requireSuccess(t, mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, b.ID, "9000000003")))
	requireFailure(t, mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, a.ID, "9000000002")), CodeValidation)

	// A member of another household cannot start one.
	requireFailure(t, mustResult(f.engine.AddFamilyMember(f.ctx, f.clinic.ID, f.userByMobile("9000000003").ID, "Tara", "Daughter", 4)), CodeValidation)
}

func TestLinkFamilyMemberDissolvesEmptyHousehold(t *testing.T) {
	f := newFixture(t)
	a := f.addUser(f.clinic.ID, "Meera", models.RolePatient, "9000000001")
	b := f.addUser(f.clinic.ID, "Arjun", models.RolePatient, "9000000002")
	f.addUser(f.clinic.ID, "Kabir", models.RolePatient, "9000000003")

	requireSuccess(t, mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, b.ID, "9000000003")))
	kabir := f.userByMobile("9000000003")
	requireSuccess(t, mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, a.ID, "9000000003")))
	assert.NotEqual(t, *kabir.FamilyGroupID, *f.userByMobile("9000000003").FamilyGroupID)

	// b now heads an empty household and may join a's.
	requireSuccess(t, mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, a.ID, "9000000002")))
	_, err := f.store.GetFamilyGroupByHead(f.ctx, b.ID)
	assert.Error(t, err)

	res := mustResult(f.engine.GetData(f.ctx, &f.clinic.ID))
	require.Len(t, res.UpdatedData.FamilyGroups, 1)
}

func TestAddFamilyMember(t *testing.T) {
	f := newFixture(t)
	head := f.addUser(f.clinic.ID, "Meera", models.RolePatient, "9000000001")

	res, err := f.engine.AddFamilyMember(f.ctx, f.clinic.ID, head.ID, "Tara", "Daughter", 7)
	require.NoError(t, err)
	requireSuccess(t, res)

	var tara *models.User
	for i, u := range res.UpdatedData.Users {
		if u.Name == "Tara" {
			tara = &res.UpdatedData.Users[i]
		}
	}
	require.NotNil(t, tara)
	assert.Equal(t, models.RolePatient, tara.Role)
	assert.Equal(t, "Daughter", tara.Relation)
	assert.Equal(t, 7, tara.Age)
	assert.Nil(t, tara.Mobile)
	require.NotNil(t, tara.FamilyGroupID)
	assert.Equal(t, *f.user(head.ID).FamilyGroupID, *tara.FamilyGroupID)

	w, err := f.store.GetWalletByUser(f.ctx, tara.ID)
	require.NoError(t, err)
	assert.Zero(t, w.Balance)

	requireSuccess(t, f.earn(tara.ID, 1000, models.CategoryGeneral))
	assert.Equal(t, int64(26), f.balance(head.ID))
	assert.Zero(t, f.balance(tara.ID))

	requireFailure(t, mustResult(f.engine.AddFamilyMember(f.ctx, f.clinic.ID, head.ID, "", "Son", 3)), CodeValidation)
	requireFailure(t, mustResult(f.engine.AddFamilyMember(f.ctx, f.clinic.ID, head.ID, "Dev", "Son", -1)), CodeValidation)
}

func TestClaimFamilyMemberOnlyTakesUnattachedPatients(t *testing.T) {
	f := newFixture(t)
	meera := f.addUser(f.clinic.ID, "Meera", models.RolePatient, "9000000001")
	mallory := f.addUser(f.clinic.ID, "Mallory", models.RolePatient, "9000000004")
	kabir := f.addUser(f.clinic.ID, "Kabir", models.RolePatient, "9000000002")
	f.addUser(f.clinic.ID, "Isha", models.RolePatient, "9000000005")

	requireSuccess(t, mustResult(f.engine.ClaimFamilyMember(f.ctx, f.clinic.ID, meera.ID, "9000000002")))
	requireSuccess(t, mustResult(f.engine.ClaimFamilyMember(f.ctx, f.clinic.ID, meera.ID, "9000000002")))

	requireFailure(t, mustResult(f.engine.ClaimFamilyMember(f.ctx, f.clinic.ID, mallory.ID, "9000000002")), CodeAuth)
	requireFailure(t, mustResult(f.engine.ClaimFamilyMember(f.ctx, f.clinic.ID, mallory.ID, "9000000001")), CodeAuth)

	head, err := f.engine.EffectiveHead(f.ctx, kabir.ID)
	require.NoError(t, err)
	assert.Equal(t, meera.ID, head.ID)
	_, err = f.store.GetFamilyGroupByHead(f.ctx, mallory.ID)
	assert.Error(t, err)

	requireSuccess(t, mustResult(f.engine.ClaimFamilyMember(f.ctx, f.clinic.ID, mallory.ID, "9000000005")))
}

func TestFamilyLinksOnlyPatients(t *testing.T) {
	f := newFixture(t)
	head := f.addUser(f.clinic.ID, "Meera", models.RolePatient, "9000000001")
	staff := f.addUser(f.clinic.ID, "Dr. Rao", models.RoleAdmin, "9000000007")

	requireFailure(t, mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, head.ID, "9000000007")), CodeNotFound)
	requireFailure(t, mustResult(f.engine.LinkFamilyMember(f.ctx, f.clinic.ID, staff.ID, "9000000001")), CodeAuth)
	requireFailure(t, mustResult(f.engine.AddFamilyMember(f.ctx, f.clinic.ID, staff.ID, "Tara", "Daughter", 4)), CodeAuth)

	assert.Empty(t, f.state().FamilyGroups)
	assert.Nil(t, f.user(staff.ID).FamilyGroupID)
}

func (f *fixture) userByMobile(mobile string) models.User {
	f.t.Helper()
	u, err := f.store.FindUserByMobile(f.ctx, f.clinic.ID, mobile)
	require.NoError(f.t, err)
	return *u
}
